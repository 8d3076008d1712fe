package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio"
	"github.com/eringen/folio/document"
	"github.com/eringen/folio/markdown"
)

// frontMatter is the YAML header of an imported or exported post.
type frontMatter struct {
	Title      string           `yaml:"title"`
	Slug       string           `yaml:"slug,omitempty"`
	Excerpt    string           `yaml:"excerpt,omitempty"`
	Author     string           `yaml:"author,omitempty"`
	Category   string           `yaml:"category,omitempty"`
	Tags       []string         `yaml:"tags,omitempty"`
	CoverImage string           `yaml:"cover_image,omitempty"`
	Status     folio.PostStatus `yaml:"status,omitempty"`
}

var fence = []byte("---")

// splitFrontMatter separates a leading "---" delimited YAML block from the
// body. Files without one return a nil header.
func splitFrontMatter(src []byte) (header, body []byte) {
	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	if !bytes.HasPrefix(src, fence) {
		return nil, src
	}
	rest := src[len(fence):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, src
	}
	rest = rest[nl+1:]
	for off := 0; off < len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		line := rest[off:]
		if end >= 0 {
			line = rest[off : off+end]
		}
		if bytes.Equal(bytes.TrimRight(line, " \r"), fence) {
			header = rest[:off]
			if end < 0 {
				return header, nil
			}
			return header, rest[off+end+1:]
		}
		if end < 0 {
			break
		}
		off += end + 1
	}
	return nil, src
}

// parsePostFile turns a Markdown or HTML file with optional front matter
// into a post.
func parsePostFile(name string, src []byte) (folio.Post, error) {
	header, body := splitFrontMatter(src)
	var fm frontMatter
	if header != nil {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return folio.Post{}, fmt.Errorf("front matter: %w", err)
		}
	}

	var doc document.Document
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		d, err := markdown.FromHTML(string(body))
		if err != nil {
			return folio.Post{}, err
		}
		doc = d
	default:
		doc = markdown.Parse(string(body))
	}

	if fm.Title == "" {
		fm.Title = firstHeading(doc)
	}
	if fm.Slug == "" {
		fm.Slug = folio.Slugify(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	}
	return folio.Post{
		Slug:       fm.Slug,
		Title:      fm.Title,
		Excerpt:    fm.Excerpt,
		Body:       doc,
		CoverImage: fm.CoverImage,
		Author:     fm.Author,
		Category:   fm.Category,
		Tags:       fm.Tags,
		Status:     fm.Status,
	}, nil
}

func firstHeading(d document.Document) string {
	for _, n := range d.Children {
		if n.Type == document.Heading {
			return strings.TrimSpace(n.String())
		}
	}
	return ""
}

// formatPostFile renders p as Markdown with a front matter header.
func formatPostFile(p folio.Post) ([]byte, error) {
	header, err := yaml.Marshal(frontMatter{
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    p.Excerpt,
		Author:     p.Author,
		Category:   p.Category,
		Tags:       p.Tags,
		CoverImage: p.CoverImage,
		Status:     p.Status,
	})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(markdown.Render(p.Body))
	return buf.Bytes(), nil
}

func openStore() (*folio.Store, error) {
	cfg, err := folio.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	return folio.NewStore(cfg.DatabasePath)
}

var (
	importSlug   string
	importStatus string
	importPage   bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import Markdown or HTML files as posts or pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importSlug != "" && len(args) > 1 {
			return errors.New("--slug needs a single file")
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, name := range args {
			src, err := os.ReadFile(name)
			if err != nil {
				return err
			}
			post, err := parsePostFile(name, src)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if importSlug != "" {
				post.Slug = importSlug
			}
			if importPage {
				page, err := store.SavePage(folio.Page{Slug: post.Slug, Title: post.Title, Body: post.Body})
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported page %s\n", page.Slug)
				continue
			}
			if importStatus != "" {
				post.Status = folio.PostStatus(importStatus)
			}
			saved, err := store.SavePost(post)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s)\n", saved.Slug, saved.Status)
		}
		return nil
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <slug>",
	Short: "Export a post as Markdown with front matter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		post, err := store.GetPostAny(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		out, err := formatPostFile(post)
		if err != nil {
			return err
		}
		if exportOut == "" || exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		return os.WriteFile(exportOut, out, 0o644)
	},
}

func init() {
	importCmd.Flags().StringVar(&importSlug, "slug", "", "slug for the imported post (single file only)")
	importCmd.Flags().StringVar(&importStatus, "status", "", "override the status from front matter")
	importCmd.Flags().BoolVar(&importPage, "page", false, "import as a static page instead of a post")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "write to file instead of stdout")
}
