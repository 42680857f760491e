package main

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/v0xg/uinav/internal/appliance"
	"github.com/v0xg/uinav/internal/browser"
	"github.com/v0xg/uinav/internal/config"
	"github.com/v0xg/uinav/internal/executor"
	"github.com/v0xg/uinav/internal/gifgen"
	"github.com/v0xg/uinav/internal/navigator"
	"github.com/v0xg/uinav/internal/services"
)

// buildRegistry registers the built-in steps and every scripted graph.
func buildRegistry(graphFiles []string, log logr.Logger) (*navigator.Registry, error) {
	reg := navigator.NewRegistry()
	appliance.Register(reg)
	services.Register(reg)
	for _, path := range graphFiles {
		g, err := executor.LoadGraph(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err := g.Register(reg, executor.Options{Logger: log}); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return reg, nil
}

// session is a launched browser bound to the configured appliance
type session struct {
	browser  *browser.Browser
	app      *appliance.Appliance
	recorder *gifgen.Recorder
}

func openSession(cfg *config.Config, log logr.Logger, recordFrames bool) (*session, error) {
	if cfg.Appliance.URL == "" {
		return nil, errors.New("appliance URL not configured (set appliance.url or UINAV_URL)")
	}
	if cfg.Appliance.Version == "" {
		return nil, errors.New("appliance version not configured (set appliance.version or UINAV_VERSION)")
	}

	reg, err := buildRegistry(cfg.Navigation.Graphs, log)
	if err != nil {
		return nil, err
	}

	fmt.Printf("→ Launching browser... ")
	b, err := browser.Launch(browser.Options{
		Width:          cfg.Browser.Width,
		Height:         cfg.Browser.Height,
		Headless:       cfg.Browser.Headless,
		Bin:            cfg.Browser.Bin,
		ProfileDir:     cfg.Browser.Profile,
		ElementTimeout: cfg.Browser.ElementTimeout,
		Logger:         log,
	})
	if err != nil {
		fmt.Println("failed")
		return nil, err
	}
	fmt.Println("done")

	s := &session{browser: b}
	navOpts := navigator.Options{
		MaxAttempts: cfg.Navigation.MaxAttempts,
		RetryDelay:  cfg.Navigation.RetryDelay,
		StepTimeout: cfg.Navigation.StepTimeout,
		Logger:      log,
	}
	if recordFrames {
		s.recorder = gifgen.NewRecorder(b, log)
		navOpts.Hooks = append(navOpts.Hooks, s.recorder.Hook)
	}

	s.app, err = appliance.New(appliance.Options{
		URL:         cfg.Appliance.URL,
		Version:     cfg.Appliance.Version,
		ProductName: cfg.Appliance.ProductName,
		Username:    cfg.Appliance.Username,
		Password:    cfg.Appliance.Password,
		Driver:      b,
		Navigator:   navigator.New(reg, navOpts),
		Logger:      log,
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	return s, nil
}

// entity builds the navigation entity named by a CLI type and name.
func (s *session) entity(entityType, name string) navigator.Entity {
	switch navigator.EntityType(entityType) {
	case appliance.EntityType:
		return s.app
	case services.EntityType:
		return services.New(s.app, name)
	default:
		return &executor.ScriptedEntity{
			Type:    navigator.EntityType(entityType),
			Name:    name,
			Driver:  s.browser,
			Related: map[navigator.EntityType]navigator.Entity{appliance.EntityType: s.app},
		}
	}
}

// finish writes the recording, if any, and closes the browser.
func (s *session) finish(output string, fps int) error {
	defer s.browser.Close()
	if s.recorder == nil {
		return nil
	}
	fmt.Printf("→ Generating GIF (%d frames)... ", len(s.recorder.Frames()))
	size, err := s.recorder.Save(output, gifgen.Options{FPS: fps, MaxWidth: 800})
	if err != nil {
		fmt.Println("failed")
		return fmt.Errorf("GIF generation failed: %w", err)
	}
	fmt.Println("done")
	fmt.Printf("✓ Saved to %s (%.1f KB)\n", output, float64(size)/1024)
	return nil
}
