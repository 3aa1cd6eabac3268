package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
)

// ProductFolder is one folder of product photos found under the scan prefix.
type ProductFolder struct {
	// Path is the folder path relative to the scan prefix, e.g.
	// "DTF Designs/Baseball-Team".
	Path string
	// Objects are the full object names of the images inside the folder.
	Objects []string
}

// Scanner walks a cloud-storage bucket for product photo folders and keeps
// processed markers so each folder is handled once.
type Scanner struct {
	client       *storage.Client
	bucket       string
	prefix       string
	markerPrefix string
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// NewScanner creates a Scanner. Credentials come from the ambient
// environment (application default credentials).
func NewScanner(ctx context.Context, bucket, prefix, markerPrefix string) (*Scanner, error) {
	if bucket == "" {
		return nil, errors.New("storage bucket cannot be empty")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	if markerPrefix == "" {
		markerPrefix = ".processed/"
	}
	return &Scanner{
		client:       client,
		bucket:       bucket,
		prefix:       normalizePrefix(prefix),
		markerPrefix: normalizePrefix(markerPrefix),
	}, nil
}

func (s *Scanner) Close() error {
	return s.client.Close()
}

// ListProductFolders groups image objects under the scan prefix by their
// containing folder, skipping folders that already carry a processed marker.
func (s *Scanner) ListProductFolders(ctx context.Context) ([]ProductFolder, error) {
	folders := make(map[string][]string)

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects under %q: %w", s.prefix, err)
		}
		if strings.HasPrefix(attrs.Name, s.markerPrefix) {
			continue
		}
		if !imageExtensions[strings.ToLower(path.Ext(attrs.Name))] {
			continue
		}

		rel := strings.TrimPrefix(attrs.Name, s.prefix)
		folder := path.Dir(rel)
		if folder == "." || folder == "/" {
			// Loose images at the top level have no folder hint; skip them.
			continue
		}
		folders[folder] = append(folders[folder], attrs.Name)
	}

	var result []ProductFolder
	for folder, objects := range folders {
		processed, err := s.IsProcessed(ctx, folder)
		if err != nil {
			return nil, err
		}
		if processed {
			log.Debugf("Skipping already processed folder %q", folder)
			continue
		}
		sort.Strings(objects)
		result = append(result, ProductFolder{Path: folder, Objects: objects})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// DownloadImage reads one object's bytes.
func (s *Scanner) DownloadImage(ctx context.Context, object string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening object %q: %w", object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading object %q: %w", object, err)
	}
	return data, nil
}

// IsProcessed reports whether a processed marker exists for the folder.
func (s *Scanner) IsProcessed(ctx context.Context, folder string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(s.markerObject(folder)).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking marker for %q: %w", folder, err)
	}
	return true, nil
}

// MarkProcessed writes a marker object so the folder is not picked up again.
func (s *Scanner) MarkProcessed(ctx context.Context, folder string) error {
	w := s.client.Bucket(s.bucket).Object(s.markerObject(folder)).NewWriter(ctx)
	w.ContentType = "text/plain"
	if _, err := fmt.Fprintf(w, "processed %s\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		w.Close()
		return fmt.Errorf("writing marker for %q: %w", folder, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing marker for %q: %w", folder, err)
	}
	return nil
}

func (s *Scanner) markerObject(folder string) string {
	return s.markerPrefix + strings.ReplaceAll(folder, "/", "__")
}

func normalizePrefix(p string) string {
	if p != "" && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
