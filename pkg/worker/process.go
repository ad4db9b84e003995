package worker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/grotesquebooks/grotesque/pkg/catalog"
	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/ifiction"
	"github.com/grotesquebooks/grotesque/pkg/jobs"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ProcessImportFilesJob catalogs a batch of story files. Each file is one
// committed step: progress and accumulated errors are written back after
// every file, and cancellation is honored between files. Per-file failures
// never abort the batch.
func (w *Worker) ProcessImportFilesJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*jobs.JobImportFilesData)
	if !ok {
		return errors.New("unexpected job data type")
	}

	files, err := w.collectFiles(ctx, data.Paths)
	if err != nil {
		return errors.WithStack(err)
	}

	job.Total = len(files)
	err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"total"}})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := catalog.AddOptions{
		FetchMetadata: w.config.User.IFDB.FetchMetadata,
		FetchCoverArt: w.config.User.IFDB.FetchCoverArt,
	}
	if data.FetchMetadata != nil {
		opts.FetchMetadata = *data.FetchMetadata
	}
	if data.FetchCoverArt != nil {
		opts.FetchCoverArt = *data.FetchCoverArt
	}

	for _, path := range files {
		cancelled, err := w.jobCancelled(ctx, job.ID)
		if err != nil {
			return errors.WithStack(err)
		}
		if cancelled {
			log.Info("job cancelled; stopping batch")
			return nil
		}

		result, err := w.engine.AddStoryFromFile(ctx, path, opts)
		switch {
		case err != nil:
			// Recoverable classification failures and per-file conflicts are
			// recorded and the batch moves on.
			log.Err(err).Warn("add story error", logger.Data{"path": path})
			data.Errors = append(data.Errors, filepath.Base(path)+": "+errcodes.Message(err))
		case result.Created:
			data.Added++
		default:
			data.Skipped++
		}

		job.Progress++
		job.Data = ""
		err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"progress", "data"}})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

// ProcessImportIfictionJob ingests an interchange document, one committed
// step per story node.
func (w *Worker) ProcessImportIfictionJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*jobs.JobImportIfictionData)
	if !ok {
		return errors.New("unexpected job data type")
	}

	doc, err := ifiction.Parse([]byte(data.XML))
	if err != nil {
		return errors.WithStack(err)
	}

	job.Total = len(doc.Stories)
	err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"total"}})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := catalog.ImportOptions{FetchCoverArt: w.config.User.IFDB.FetchCoverArt}
	if data.FetchCoverArt != nil {
		opts.FetchCoverArt = *data.FetchCoverArt
	}

	for _, node := range doc.Stories {
		cancelled, err := w.jobCancelled(ctx, job.ID)
		if err != nil {
			return errors.WithStack(err)
		}
		if cancelled {
			log.Info("job cancelled; stopping import")
			return nil
		}

		_, err = w.engine.ImportStory(ctx, node, opts)
		if err != nil {
			log.Err(err).Warn("import story error", logger.Data{"title": node.Title()})
			title := node.Title()
			if title == "" {
				title = "<untitled>"
			}
			data.Errors = append(data.Errors, title+": "+errcodes.Message(err))
		} else {
			data.Added++
		}

		job.Progress++
		job.Data = ""
		err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"progress", "data"}})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

// ProcessRemoveStoriesJob removes a batch of stories, one committed step
// per story.
func (w *Worker) ProcessRemoveStoriesJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*jobs.JobRemoveStoriesData)
	if !ok {
		return errors.New("unexpected job data type")
	}

	job.Total = len(data.StoryIDs)
	err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"total"}})
	if err != nil {
		return errors.WithStack(err)
	}

	for _, storyID := range data.StoryIDs {
		cancelled, err := w.jobCancelled(ctx, job.ID)
		if err != nil {
			return errors.WithStack(err)
		}
		if cancelled {
			log.Info("job cancelled; stopping removal")
			return nil
		}

		if err := w.engine.RemoveStory(ctx, storyID); err != nil {
			log.Err(err).Warn("remove story error", logger.Data{"story_id": storyID})
			data.Errors = append(data.Errors, errcodes.Message(err))
		}

		job.Progress++
		job.Data = ""
		err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"progress", "data"}})
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func (w *Worker) jobCancelled(ctx context.Context, jobID int) (bool, error) {
	status, err := w.jobService.RefreshStatus(ctx, jobID)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return status == jobs.JobStatusCancelled, nil
}

// collectFiles expands the job's paths into a flat list of candidate story
// files. Directories are walked recursively; files the user named directly
// are taken as-is, while walked files go through a cheap mime-type
// prefilter so a scan over a mixed directory doesn't hand every screenshot
// and soundtrack file to the classifier.
func (w *Worker) collectFiles(ctx context.Context, paths []string) ([]string, error) {
	log := logger.FromContext(ctx)
	files := []string{}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			log.Warn("skipping unreadable path", logger.Data{"path": path, "err": err.Error()})
			continue
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return errors.WithStack(err)
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			if !likelyStoryFile(p) {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return files, nil
}

// likelyStoryFile rejects media files by sniffed mime type. Story files
// mostly detect as application/octet-stream, so the filter is exclusionary
// rather than an allow-list.
func likelyStoryFile(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	detected := mtype.String()
	for _, prefix := range []string{"image/", "audio/", "video/", "text/html"} {
		if strings.HasPrefix(detected, prefix) {
			return false
		}
	}
	return true
}
