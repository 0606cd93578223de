package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"order-notifier/internal/models"
)

// FileSource читает ключ сервис-аккаунта Firebase с диска при каждом вызове.
// Файл не кэшируется.
type FileSource struct {
	Path string
}

// NewFileSource создает источник учетных данных по пути к JSON-файлу ключа.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads and validates the service account file.
func (s *FileSource) Load(_ context.Context) (models.ServiceCredential, error) {
	if s.Path == "" {
		return models.ServiceCredential{}, fmt.Errorf("%w: credentials path is not configured", models.ErrCredentialUnavailable)
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return models.ServiceCredential{}, fmt.Errorf("%w: failed to read %s: %v", models.ErrCredentialUnavailable, s.Path, err)
	}
	return ParseServiceAccount(raw)
}

// ParseServiceAccount decodes a service account JSON document.
func ParseServiceAccount(raw []byte) (models.ServiceCredential, error) {
	var cred models.ServiceCredential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return models.ServiceCredential{}, fmt.Errorf("%w: invalid service account JSON: %v", models.ErrCredentialUnavailable, err)
	}
	switch {
	case cred.ClientEmail == "":
		return models.ServiceCredential{}, fmt.Errorf("%w: client_email is empty", models.ErrCredentialUnavailable)
	case cred.PrivateKey == "":
		return models.ServiceCredential{}, fmt.Errorf("%w: private_key is empty", models.ErrCredentialUnavailable)
	case cred.ProjectID == "":
		return models.ServiceCredential{}, fmt.Errorf("%w: project_id is empty", models.ErrCredentialUnavailable)
	}
	return cred, nil
}
