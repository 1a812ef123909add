package main

import (
	"fmt"
	"os"

	"tagshelf/internal/catalog"
	"tagshelf/internal/errors"
	"tagshelf/internal/log"
	"tagshelf/internal/session"
	"tagshelf/internal/sidecar"
	"tagshelf/pkg/types"
)

// app is one CLI run: a sidecar process and the session reading through it
type app struct {
	driver  *sidecar.Driver
	session *session.Session

	// set by the watch command so the watcher ignores our own writes
	suppress func(path string)
}

// openApp starts exiftool and opens paths, the working directory if none
func openApp(paths []string) (*app, error) {
	driver, err := sidecar.Start(sidecar.Options{
		Binary:  cfg.Sidecar.Binary,
		Timeout: cfg.SidecarTimeout(),
	})
	if err != nil {
		if errors.IsProcessUnavailable(err) {
			return nil, fmt.Errorf("%w (is %s installed and on PATH?)", err, cfg.Sidecar.Binary)
		}
		return nil, err
	}

	a := &app{driver: driver}
	c := catalog.New(driver,
		catalog.WithConfig(cfg),
		catalog.WithWriteObserver(func(path string) {
			if a.suppress != nil {
				a.suppress(path)
			}
		}),
	)
	a.session = session.New(c)

	if len(paths) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}
		paths = []string{wd}
	}
	a.session.Open(paths)
	return a, nil
}

// Close stops the sidecar
func (a *app) Close() {
	if err := a.driver.Shutdown(); err != nil {
		log.LogWithError(err).Warn("Sidecar shutdown")
	}
}

// resolve maps files to catalog addresses, failing on the first unknown one
func (a *app) resolve(files []string) ([]types.Address, error) {
	addrs := make([]types.Address, 0, len(files))
	for _, file := range files {
		addr, ok := a.session.Catalog().Resolve(file)
		if !ok {
			return nil, fmt.Errorf("%s is not a catalogued image", file)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// selectFiles makes files the current selection
func (a *app) selectFiles(files []string) error {
	addrs, err := a.resolve(files)
	if err != nil {
		return err
	}
	for i, addr := range addrs {
		if i == 0 {
			if !a.session.Focus(addr) {
				return fmt.Errorf("%s is not in the current results", files[i])
			}
			continue
		}
		a.session.Toggle(addr)
	}
	return nil
}

// selectAll selects every current result
func (a *app) selectAll() bool {
	search := a.session.Search()
	first, ok := search.First()
	if !ok {
		return false
	}
	last, _ := search.Last()
	a.session.Focus(first)
	return a.session.Extend(last)
}

// writeFailures reports field writes exiftool did not confirm
func (a *app) writeFailures() error {
	errs := a.session.Catalog().WriteErrors()
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		log.LogWithError(err).Error("Metadata write failed")
	}
	return fmt.Errorf("%d metadata %s not confirmed", len(errs), plural(len(errs), "write", "writes"))
}
