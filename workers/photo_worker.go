package workers

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/jasepellerin/family-tree/media"
	"github.com/jasepellerin/family-tree/repository"
	"github.com/jasepellerin/family-tree/tree"
	"github.com/jasepellerin/family-tree/utils"
)

// ThumbnailJob asks for a thumbnail of a person's uploaded photo.
type ThumbnailJob struct {
	PersonID          string
	PhotoRelativePath string // relative to the media storage base
}

// PhotoProcessor generates photo thumbnails in the background and writes
// the resulting asset path back through the store and the repository.
type PhotoProcessor struct {
	JobQueue chan ThumbnailJob
	Store    *tree.Store
	Repo     repository.PersonRepositoryInterface
	Media    media.Store
	MaxSize  int
	Wg       sync.WaitGroup
	StopChan chan struct{}
}

// NewPhotoProcessor starts the worker pool.
func NewPhotoProcessor(store *tree.Store, repo repository.PersonRepositoryInterface, mediaStore media.Store, maxSize, queueSize, numWorkers int) *PhotoProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	pp := &PhotoProcessor{
		JobQueue: make(chan ThumbnailJob, queueSize),
		Store:    store,
		Repo:     repo,
		Media:    mediaStore,
		MaxSize:  maxSize,
		StopChan: make(chan struct{}),
	}

	pp.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go pp.worker(i)
	}
	log.Printf("started %d photo worker(s) with queue size %d", numWorkers, queueSize)

	return pp
}

// Enqueue schedules a thumbnail job; returns false when the queue is full.
func (pp *PhotoProcessor) Enqueue(job ThumbnailJob) bool {
	select {
	case pp.JobQueue <- job:
		return true
	default:
		log.Printf("photo worker queue full, dropping job for person %s", job.PersonID)
		return false
	}
}

func (pp *PhotoProcessor) worker(id int) {
	defer pp.Wg.Done()
	log.Printf("photo worker %d started", id)
	for {
		select {
		case job, ok := <-pp.JobQueue:
			if !ok {
				log.Printf("photo worker %d stopping: job queue closed", id)
				return
			}
			log.Printf("worker %d processing thumbnail for person %s", id, job.PersonID)
			pp.processJob(job)

		case <-pp.StopChan:
			log.Printf("photo worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (pp *PhotoProcessor) processJob(job ThumbnailJob) {
	photoPath, err := pp.Media.GetFullPath(job.PhotoRelativePath)
	if err != nil {
		log.Printf("photo worker: invalid photo path %s: %v", job.PhotoRelativePath, err)
		return
	}
	if _, err := os.Stat(photoPath); os.IsNotExist(err) {
		log.Printf("photo worker: photo %s not found, skipping thumbnail generation", photoPath)
		return
	}

	thumbDir, err := pp.Media.EnsureDir(media.AssetTypeThumbnail)
	if err != nil {
		log.Printf("photo worker: failed to ensure thumbnail directory: %v", err)
		return
	}

	thumbPath, err := utils.GenerateThumbnail(photoPath, thumbDir, pp.MaxSize, pp.MaxSize)
	if err != nil {
		log.Printf("photo worker: failed to generate thumbnail for person %s: %v", job.PersonID, err)
		return
	}

	basePath, err := pp.Media.GetFullPath(".")
	if err != nil {
		log.Printf("photo worker: failed to resolve storage base: %v", err)
		return
	}
	relThumb, err := filepath.Rel(basePath, thumbPath)
	if err != nil {
		log.Printf("photo worker: failed to relativize thumbnail path %s: %v", thumbPath, err)
		return
	}
	relThumbSlash := filepath.ToSlash(relThumb)

	person, ok := pp.Store.GetPerson(job.PersonID)
	if !ok {
		// person was deleted while the job was queued
		log.Printf("photo worker: person %s no longer exists, discarding thumbnail", job.PersonID)
		_ = pp.Media.Delete(relThumbSlash)
		return
	}

	if _, ok := pp.Store.SetPhoto(job.PersonID, person.PhotoPath, &relThumbSlash); !ok {
		_ = pp.Media.Delete(relThumbSlash)
		return
	}
	if err := pp.Repo.UpdatePhotoPaths(job.PersonID, person.PhotoPath, &relThumbSlash); err != nil {
		log.Printf("photo worker: failed to persist thumbnail path for person %s: %v", job.PersonID, err)
	}
}

// Stop signals the workers and waits for them to finish.
func (pp *PhotoProcessor) Stop() {
	close(pp.StopChan)
	pp.Wg.Wait()
	log.Printf("photo workers stopped")
}
