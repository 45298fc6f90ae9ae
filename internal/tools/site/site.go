// Package site renders the static download page: a Hugo content page listing
// every recorded release with its per-platform links.
package site

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	md "github.com/nao1215/markdown"
	"github.com/natefinch/atomic"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
)

const (
	defaultSiteDir = constants.DefaultSiteDir
	defaultTitle   = "Cursor Download Links"
	defaultWeight  = 1

	contentDirName = "content"
	indexFileName  = "_index.md"
	publicDirName  = "public"

	placeholder = "Not Ready"
	linkSep     = "<br>"

	hugoCmd         = "hugo"
	hugoSourceFlag  = "--source"
	hugoMinifyFlag  = "--minify"
	hugoInstallHelp = "Hugo not found. Install with: brew install hugo or use devbox shell"

	frontMatterTmpl = `---
title: "%s"
description: "%s"
weight: %d
---

`
)

// Site generates the download page under a Hugo site root.
type Site struct {
	rootDir   string
	title     string
	platforms releases.PlatformTable
}

// Config holds site configuration.
type Config struct {
	RootDir   string // Root directory for the site (default: ./site)
	Title     string // Page title
	Platforms releases.PlatformTable
}

// New creates a new Site instance.
func New(config *Config) (*Site, error) {
	if config == nil {
		config = &Config{}
	}
	if config.RootDir == "" {
		config.RootDir = defaultSiteDir
	}
	if config.Title == "" {
		config.Title = defaultTitle
	}
	if len(config.Platforms.Groups()) == 0 {
		config.Platforms = releases.DefaultPlatforms()
	}

	return &Site{
		rootDir:   config.RootDir,
		title:     config.Title,
		platforms: config.Platforms,
	}, nil
}

// IndexPath returns the path of the generated content page.
func (s *Site) IndexPath() string {
	return filepath.Join(s.rootDir, contentDirName, indexFileName)
}

// Generate writes the content page for ledger and returns its path.
func (s *Site) Generate(ctx context.Context, ledger *releases.Ledger) (string, error) {
	logger := logging.FromContext(ctx)
	path := s.IndexPath()

	var b strings.Builder
	if err := s.Render(&b, ledger); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(b.String())); err != nil {
		return "", errors.WrapIO("write", path, err)
	}
	if err := os.Chmod(path, constants.FilePermissions); err != nil {
		return "", errors.WrapIO("chmod", path, err)
	}

	logger.Info().
		Str("path", path).
		Int("versions", ledger.Len()).
		Msg("Generated site content")
	return path, nil
}

// Render writes the content page for ledger to w.
func (s *Site) Render(w io.Writer, ledger *releases.Ledger) error {
	description := "No releases recorded yet"
	if ledger.Len() > 0 {
		latest := ledger.Versions[0]
		description = fmt.Sprintf("Latest version %s, released %s", latest.Version, latest.Date)
	}
	if _, err := fmt.Fprintf(w, frontMatterTmpl, s.title, description, defaultWeight); err != nil {
		return errors.WrapIO("write", "front matter", err)
	}

	page := md.NewMarkdown(w).H1(s.title)
	if ledger.Len() == 0 {
		page.PlainText(description)
		return page.Build()
	}

	latest := ledger.Versions[0]
	page.PlainText(description + ".").LF()

	page.H2("Latest downloads")
	var items []string
	for _, g := range s.platforms.Groups() {
		if cell := s.cell(latest, g); cell != placeholder {
			items = append(items, osTitle(g.OS)+": "+strings.ReplaceAll(cell, linkSep, ", "))
		}
	}
	page.BulletList(items...)

	page.H2("All versions")
	page.Table(md.TableSet{
		Header: s.header(),
		Rows:   s.rows(ledger),
	})
	return page.Build()
}

func (s *Site) header() []string {
	header := []string{"Version", "Date"}
	for _, g := range s.platforms.Groups() {
		header = append(header, g.Section)
	}
	return header
}

func (s *Site) rows(ledger *releases.Ledger) [][]string {
	rows := make([][]string, 0, ledger.Len())
	for _, entry := range ledger.Versions {
		row := []string{entry.Version, entry.Date}
		for _, g := range s.platforms.Groups() {
			row = append(row, s.cell(entry, g))
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Site) cell(entry releases.VersionEntry, g releases.Group) string {
	var links []string
	for _, p := range g.Platforms {
		if u := entry.URL(p); u != "" {
			links = append(links, md.Link(p.String(), u))
		}
	}
	if len(links) == 0 {
		return placeholder
	}
	return strings.Join(links, linkSep)
}

func osTitle(o releases.OS) string {
	return cases.Title(language.English).String(string(o))
}

// Build runs Hugo over the site root, writing to <root>/public.
func (s *Site) Build(ctx context.Context) error {
	if _, err := exec.LookPath(hugoCmd); err != nil {
		return &errors.DependencyError{Dependency: hugoCmd, Message: hugoInstallHelp}
	}

	// #nosec G204 - fixed binary, site root comes from configuration
	cmd := exec.CommandContext(ctx, hugoCmd, hugoSourceFlag, s.rootDir, hugoMinifyFlag)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &errors.ProcessError{
			Operation: "build site",
			Command:   strings.Join(cmd.Args, " "),
			Output:    string(out),
			Err:       err,
		}
	}

	logging.FromContext(ctx).Info().
		Str("output_dir", filepath.Join(s.rootDir, publicDirName)).
		Msg("Site built successfully")
	return nil
}
