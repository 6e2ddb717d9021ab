package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"minecraft-store/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

const excerptLength = 160

var frontMatterDelim = []byte("---")

type BlogService interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, slug string) (*model.Post, error)
}

type frontMatter struct {
	Title     string   `yaml:"title"`
	Date      string   `yaml:"date"`
	Tags      []string `yaml:"tags"`
	Thumbnail string   `yaml:"thumbnail"`
	Excerpt   string   `yaml:"excerpt"`
}

type blogServiceImpl struct {
	dir      string
	markdown goldmark.Markdown
	log      logrus.FieldLogger
}

func NewBlogService(dir string, log logrus.FieldLogger) BlogService {
	return &blogServiceImpl{
		dir:      dir,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:      log,
	}
}

// ListPosts reads every *.md file in the content directory, newest first. An empty or missing
// directory yields the placeholder posts.
func (s *blogServiceImpl) ListPosts(ctx context.Context) ([]model.Post, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return placeholderPosts(), nil
		}
		return nil, fmt.Errorf("read blog dir: %w", err)
	}

	posts := make([]model.Post, 0, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}

		post, err := s.loadPost(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.log.WithError(err).WithField("file", entry.Name()).Warn("skipping unreadable post")
			continue
		}
		posts = append(posts, *post)
	}

	if len(posts) == 0 {
		return placeholderPosts(), nil
	}

	sortPosts(posts)
	return posts, nil
}

func (s *blogServiceImpl) GetPost(ctx context.Context, slug string) (*model.Post, error) {
	posts, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug == slug {
			return &posts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
}

func (s *blogServiceImpl) loadPost(path string) (*model.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	post := &model.Post{
		Slug:      slug,
		Title:     meta.Title,
		Date:      parsePostDate(meta.Date),
		Tags:      meta.Tags,
		Thumbnail: meta.Thumbnail,
		Excerpt:   meta.Excerpt,
		Content:   buf.String(),
	}
	if post.Title == "" {
		post.Title = slug
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Excerpt == "" {
		post.Excerpt = deriveExcerpt(body)
	}
	return post, nil
}

// splitFrontMatter separates a leading "---" YAML block from the markdown body.
// Files without one are all body.
func splitFrontMatter(raw []byte) (frontMatter, []byte, error) {
	var meta frontMatter

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(raw, frontMatterDelim) {
		return meta, raw, nil
	}

	rest := raw[len(frontMatterDelim):]
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	if end < 0 {
		return meta, nil, errors.New("unterminated front matter")
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, nil, fmt.Errorf("parse front matter: %w", err)
	}

	body := rest[end+1+len(frontMatterDelim):]
	return meta, bytes.TrimLeft(body, "\r\n"), nil
}

func parsePostDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func deriveExcerpt(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		if len([]rune(line)) > excerptLength {
			return string([]rune(line)[:excerptLength]) + "…"
		}
		return line
	}
	return ""
}

func sortPosts(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

func placeholderPosts() []model.Post {
	return []model.Post{
		{
			Slug:    "store-launch",
			Title:   "The store is open",
			Date:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Tags:    []string{"announcement"},
			Excerpt: "Ranks, crate keys and cosmetics are now available in the server store.",
			Content: "<p>Ranks, crate keys and cosmetics are now available in the server store.</p>\n",
		},
		{
			Slug:    "bedrock-support",
			Title:   "Bedrock players welcome",
			Date:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Tags:    []string{"bedrock", "guide"},
			Excerpt: "Pick the Bedrock edition at checkout so your purchase reaches the right account.",
			Content: "<p>Pick the Bedrock edition at checkout so your purchase reaches the right account.</p>\n",
		},
	}
}
