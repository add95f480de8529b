package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	putInput    *s3.PutObjectInput
	deleteInput *s3.DeleteObjectInput
	putErr      error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putInput = params
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleteInput = params
	return &s3.DeleteObjectOutput{}, nil
}

// TestValidateResume tests the PDF upload checks.
func TestValidateResume(t *testing.T) {
	pdf := []byte("%PDF-1.4 content")

	assert.NoError(t, ValidateResume(pdf, "application/pdf"))
	assert.NoError(t, ValidateResume(pdf, "application/pdf; charset=binary"))

	assert.Error(t, ValidateResume(nil, "application/pdf"), "empty file")
	assert.Error(t, ValidateResume(pdf, "image/png"), "wrong content type")
	assert.Error(t, ValidateResume([]byte("plain text"), "application/pdf"), "missing PDF magic")

	oversized := append([]byte("%PDF"), bytes.Repeat([]byte("a"), MaxResumeSize)...)
	assert.Error(t, ValidateResume(oversized, "application/pdf"), "over size limit")
}

// TestUpload tests that uploads land under resumes/ with a public URL.
func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	store := NewResumeStoreWithClient(fake, "findr-resumes", "https://cdn.example.com/", time.Second)

	key, url, err := store.Upload(context.Background(), []byte("%PDF-1.4 content"), "application/pdf")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "resumes/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.Equal(t, "https://cdn.example.com/"+key, url)

	require.NotNil(t, fake.putInput)
	assert.Equal(t, "findr-resumes", *fake.putInput.Bucket)
	assert.Equal(t, "application/pdf", *fake.putInput.ContentType)
}

// TestUploadRejectsInvalid tests that validation runs before any S3 call.
func TestUploadRejectsInvalid(t *testing.T) {
	fake := &fakeS3{}
	store := NewResumeStoreWithClient(fake, "findr-resumes", "https://cdn.example.com", time.Second)

	_, _, err := store.Upload(context.Background(), []byte("not a pdf"), "application/pdf")

	assert.Error(t, err)
	assert.Nil(t, fake.putInput)
}

// TestDelete tests that deletes target the stored key.
func TestDelete(t *testing.T) {
	fake := &fakeS3{}
	store := NewResumeStoreWithClient(fake, "findr-resumes", "https://cdn.example.com", time.Second)

	require.NoError(t, store.Delete(context.Background(), "resumes/abc.pdf"))
	require.NotNil(t, fake.deleteInput)
	assert.Equal(t, "resumes/abc.pdf", *fake.deleteInput.Key)
}
