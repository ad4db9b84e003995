// Package launch is the launch policy: resolving which interpreter command
// runs a release and spawning it detached. The interpreter owns the story
// session from then on; nothing here waits for it to exit.
package launch

import (
	"context"
	"os"
	"os/exec"

	"github.com/grotesquebooks/grotesque/pkg/config"
	"github.com/grotesquebooks/grotesque/pkg/errcodes"
	"github.com/grotesquebooks/grotesque/pkg/models"
	"github.com/grotesquebooks/grotesque/pkg/releases"
	"github.com/grotesquebooks/grotesque/pkg/stories"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Spawn starts a command without waiting for it. Injectable for tests.
type Spawn func(command string, args ...string) error

func defaultSpawn(command string, args ...string) error {
	cmd := exec.Command(command, args...)
	if err := cmd.Start(); err != nil {
		return errors.WithStack(err)
	}
	// Detach; the interpreter outlives this process's interest in it.
	return errors.WithStack(cmd.Process.Release())
}

type Service struct {
	cfg      *config.Config
	stories  *stories.Service
	releases *releases.Service
	spawn    Spawn
}

func NewService(db *bun.DB, cfg *config.Config) *Service {
	return &Service{
		cfg:      cfg,
		stories:  stories.NewService(db),
		releases: releases.NewService(db),
		spawn:    defaultSpawn,
	}
}

// WithSpawn replaces the process spawner.
func (svc *Service) WithSpawn(spawn Spawn) *Service {
	svc.spawn = spawn
	return svc
}

// ResolveCommand decides which interpreter command runs a release. The
// release's format row is consulted first, then the user config keyed by
// the unwrapped format name. The release must have a located, existing
// file.
func (svc *Service) ResolveCommand(release *models.Release) (string, string, error) {
	if release.URI == nil || *release.URI == "" {
		return "", "", errcodes.StoryFileNotFound()
	}
	if _, err := os.Stat(*release.URI); err != nil {
		return "", "", errcodes.StoryFileNotFound()
	}

	if release.Format == nil {
		return "", "", errcodes.UnknownFormat(*release.URI)
	}

	command := ""
	if release.Format.Command != nil {
		command = *release.Format.Command
	}
	name := models.UnwrapFormatName(release.Format.Name)
	if command == "" {
		command = svc.cfg.User.Launcher(name)
	}
	if command == "" {
		return "", "", errcodes.NoLauncherConfigured(name)
	}

	return command, *release.URI, nil
}

// LaunchRelease spawns the interpreter for one release.
func (svc *Service) LaunchRelease(ctx context.Context, ifid string) error {
	release, err := svc.releases.RetrieveRelease(ctx, releases.RetrieveReleaseOptions{IFID: &ifid})
	if err != nil {
		return errors.WithStack(err)
	}
	return svc.launch(release)
}

// LaunchStory launches a story's default release, or its first release when
// no default is set.
func (svc *Service) LaunchStory(ctx context.Context, storyID int) error {
	story, err := svc.stories.RetrieveStory(ctx, stories.RetrieveStoryOptions{ID: &storyID})
	if err != nil {
		return errors.WithStack(err)
	}

	if story.DefaultRelease != nil {
		return svc.LaunchRelease(ctx, *story.DefaultRelease)
	}
	if len(story.Releases) == 0 {
		return errcodes.NoReleasesFound()
	}
	return svc.LaunchRelease(ctx, story.Releases[0].IFID)
}

// OpenResource opens an auxiliary resource with the configured opener
// command.
func (svc *Service) OpenResource(uri string) error {
	opener := ""
	if svc.cfg.User != nil {
		opener = svc.cfg.User.ResourceOpener
	}
	if opener == "" {
		return errcodes.NoLauncherConfigured("resource")
	}
	if err := svc.spawn(opener, uri); err != nil {
		return errcodes.LauncherError(err)
	}
	return nil
}

func (svc *Service) launch(release *models.Release) error {
	command, path, err := svc.ResolveCommand(release)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := svc.spawn(command, path); err != nil {
		return errcodes.LauncherError(err)
	}
	return nil
}
