package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/reelcraft/portal/backend/internal/authz"
	"github.com/reelcraft/portal/backend/internal/models"
	"github.com/reelcraft/portal/backend/pkg/response"
	"gorm.io/gorm"
)

const maxUploadSize = 2 << 30 // 2 GiB, video masters are large

// FileStore writes uploads to local disk under opaque random keys. The
// original filename never touches the filesystem, only the database.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save streams an uploaded file to disk and returns its metadata.
func (fs *FileStore) Save(header *multipart.FileHeader) (*FileMeta, error) {
	if header.Size > maxUploadSize {
		return nil, response.NewBadRequest("file exceeds the maximum upload size")
	}

	key := uuid.NewString()
	if ext := filepath.Ext(header.Filename); ext != "" && len(ext) <= 10 {
		key += strings.ToLower(ext)
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(fs.dir, key))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dst.Name())
		return nil, err
	}

	return &FileMeta{
		FileName:    filepath.Base(header.Filename),
		StorageKey:  key,
		ContentType: header.Header.Get("Content-Type"),
		Size:        size,
	}, nil
}

// Path resolves a storage key to its on-disk path, refusing anything
// that would escape the storage directory.
func (fs *FileStore) Path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(fs.dir, key), nil
}

// Remove deletes the stored file for a key. A missing file is not an
// error; the database row is the source of truth.
func (fs *FileStore) Remove(key string) error {
	path, err := fs.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ProjectFileService manages project-level reference files: briefs,
// brand assets, scripts.
type ProjectFileService struct {
	db     *gorm.DB
	engine *authz.Engine
	store  *FileStore
}

func NewProjectFileService(db *gorm.DB, engine *authz.Engine, store *FileStore) *ProjectFileService {
	return &ProjectFileService{db: db, engine: engine, store: store}
}

func (s *ProjectFileService) List(actorID, projectID uint) ([]models.ProjectFile, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, projectID)
	if err != nil {
		return nil, response.NewNotFound("project not found")
	}

	// Project files follow project visibility, not the deliverable
	// window: any member can browse the reference material.
	if !authz.IsInternalTeam(actor) {
		if _, ok := actor.Memberships[projectSnap.ID]; !ok && len(actor.Memberships) > 0 {
			return nil, response.NewForbidden(authz.ReasonDenied)
		}
	}

	var files []models.ProjectFile
	if err := s.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (s *ProjectFileService) Upload(actorID, projectID uint, header *multipart.FileHeader) (*models.ProjectFile, error) {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return nil, err
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, projectID)
	if err != nil {
		return nil, response.NewNotFound("project not found")
	}

	areq := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionUploadProjectFile, areq); reason != "" {
		return nil, response.NewForbidden(reason)
	}

	meta, err := s.store.Save(header)
	if err != nil {
		return nil, err
	}

	file := models.ProjectFile{
		ProjectID:   projectID,
		FileName:    meta.FileName,
		StorageKey:  meta.StorageKey,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		UploadedBy:  actorID,
	}
	if err := s.db.Create(&file).Error; err != nil {
		s.store.Remove(meta.StorageKey)
		return nil, err
	}

	LogInfo("Files", "Upload",
		fmt.Sprintf("project file %q uploaded", file.FileName),
		&actorID, "", "", nil)
	return &file, nil
}

func (s *ProjectFileService) Delete(actorID, fileID uint) error {
	actor, err := loadActor(s.db, actorID)
	if err != nil {
		return err
	}

	var file models.ProjectFile
	if err := s.db.First(&file, fileID).Error; err != nil {
		return response.NewNotFound("file not found")
	}

	_, projectSnap, err := loadProjectSnapshot(s.db, file.ProjectID)
	if err != nil {
		return err
	}

	areq := authz.Request{User: actor, Project: projectSnap}
	if reason := s.engine.ExplainDenial(authz.ActionDeleteProjectFile, areq); reason != "" {
		return response.NewForbidden(reason)
	}

	if err := s.db.Delete(&models.ProjectFile{}, fileID).Error; err != nil {
		return err
	}
	if err := s.store.Remove(file.StorageKey); err != nil {
		LogWarning("Files", "Delete",
			fmt.Sprintf("failed to remove stored file %s: %v", file.StorageKey, err),
			&actorID, "", "", nil)
	}
	return nil
}

// GetByID loads a project file record for download handling.
func (s *ProjectFileService) GetByID(fileID uint) (*models.ProjectFile, error) {
	var file models.ProjectFile
	if err := s.db.First(&file, fileID).Error; err != nil {
		return nil, response.NewNotFound("file not found")
	}
	return &file, nil
}
