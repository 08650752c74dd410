package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jasepellerin/family-tree/media"
	"github.com/jasepellerin/family-tree/repository"
	"github.com/jasepellerin/family-tree/tree"
	"github.com/jasepellerin/family-tree/utils"
	"github.com/jasepellerin/family-tree/workers"
)

type PhotoHandler struct {
	Store          *tree.Store
	Repo           repository.PersonRepositoryInterface
	Media          media.Store
	Processor      *workers.PhotoProcessor
	MaxUploadBytes int64
}

// UploadPhoto accepts a multipart "photo" file for a person, stores the
// original, records its metadata, and queues thumbnail generation.
func (ph *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	previous, ok := ph.Store.GetPerson(personID)
	if !ok {
		WritePersonNotFound(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, ph.MaxUploadBytes)
	if err := r.ParseMultipartForm(ph.MaxUploadBytes); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_upload", "Failed to parse upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_upload", "Missing 'photo' file field")
		return
	}
	defer file.Close()

	if !utils.IsRasterImage(header.Filename) {
		WriteAPIError(w, http.StatusBadRequest, "unsupported_format", "Uploaded file is not a supported image format")
		return
	}

	relPath, err := ph.Media.Save(media.AssetTypePhoto, utils.UniqueImageFilename(header.Filename), file)
	if err != nil {
		log.Printf("Error saving photo for person %s: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "storage_failed", "Failed to store photo")
		return
	}

	var meta *utils.PhotoMetadata
	if fullPath, err := ph.Media.GetFullPath(relPath); err == nil {
		meta, err = utils.GetPhotoMetadata(fullPath)
		if err != nil {
			log.Printf("Error reading photo metadata for person %s: %v", personID, err)
		}
	}

	person, ok := ph.Store.SetPhoto(personID, &relPath, nil)
	if !ok {
		// person vanished between the lookup and the upload finishing
		_ = ph.Media.Delete(relPath)
		WritePersonNotFound(w)
		return
	}

	if err := ph.Repo.UpdatePhotoPaths(personID, &relPath, nil); err != nil {
		log.Printf("Error persisting photo path for person %s: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "persistence_failed", "Photo was stored but could not be saved")
		return
	}

	// old assets are replaced, not accumulated
	if previous.PhotoPath != nil && *previous.PhotoPath != relPath {
		_ = ph.Media.Delete(*previous.PhotoPath)
	}
	if previous.ThumbnailPath != nil {
		_ = ph.Media.Delete(*previous.ThumbnailPath)
	}

	ph.Processor.Enqueue(workers.ThumbnailJob{PersonID: personID, PhotoRelativePath: relPath})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"person":   person,
		"metadata": meta,
	})
}

// DeletePhoto removes a person's photo and thumbnail assets.
func (ph *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	person, ok := ph.Store.GetPerson(personID)
	if !ok {
		WritePersonNotFound(w)
		return
	}

	updated, ok := ph.Store.SetPhoto(personID, nil, nil)
	if !ok {
		WritePersonNotFound(w)
		return
	}
	if err := ph.Repo.UpdatePhotoPaths(personID, nil, nil); err != nil {
		log.Printf("Error persisting photo removal for person %s: %v", personID, err)
		WriteAPIError(w, http.StatusInternalServerError, "persistence_failed", "Photo was removed in memory but the change could not be saved")
		return
	}

	if person.PhotoPath != nil {
		_ = ph.Media.Delete(*person.PhotoPath)
	}
	if person.ThumbnailPath != nil {
		_ = ph.Media.Delete(*person.ThumbnailPath)
	}

	writeJSON(w, http.StatusOK, updated)
}
