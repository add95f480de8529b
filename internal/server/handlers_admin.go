package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// handleMigrate applies pending database migrations. It requires the
// configured migration token; with no token configured the endpoint is
// disabled.
func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	token := s.cfg.Admin.MigrateToken
	if token == "" {
		s.errorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	provided := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	applied, err := s.db.Migrate(r.Context(), s.cfg.Admin.MigrationsDir)
	if err != nil {
		s.logger.Error("migration failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Migration failed: "+err.Error())
		return
	}

	s.logger.Info("migrations applied", zap.Strings("migrations", applied))
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applied": applied,
	})
}
