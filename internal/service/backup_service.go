package service

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	repo "goldshop/internal/repository/sqlite"

	"github.com/rs/zerolog"
)

var ErrUnsafeArchive = errors.New("archive contains an unsafe path")

// BackupService zips the database file with the images and thumbs
// directories, and restores such archives in place.
type BackupService struct {
	db         *repo.Database
	products   repo.ProductRepository
	imagesDir  string
	thumbsDir  string
	backupsDir string
	log        zerolog.Logger
}

func NewBackupService(db *repo.Database, products repo.ProductRepository, imagesDir, thumbsDir, backupsDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		db:         db,
		products:   products,
		imagesDir:  imagesDir,
		thumbsDir:  thumbsDir,
		backupsDir: backupsDir,
		log:        log,
	}
}

// Backup writes a timestamped ZIP under backups/ holding the database
// file at the archive root plus the images/ and thumbs/ trees. Returns
// the archive path.
func (s *BackupService) Backup() (string, error) {
	if err := os.MkdirAll(s.backupsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.backupsDir, fmt.Sprintf("goldshop_backup_%s.zip", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	zw := zip.NewWriter(f)

	fail := func(err error) (string, error) {
		zw.Close()
		f.Close()
		os.Remove(path)
		return "", err
	}

	// Flush the WAL into the main file so the copy is complete.
	if _, err := s.db.Conn().Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fail(err)
	}
	if _, err := os.Stat(s.db.Path()); err == nil {
		if err := addFile(zw, s.db.Path(), filepath.Base(s.db.Path())); err != nil {
			return fail(err)
		}
	}
	for arc, dir := range map[string]string{"images": s.imagesDir, "thumbs": s.thumbsDir} {
		if err := addDir(zw, dir, arc); err != nil {
			return fail(err)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	s.log.Info().Str("path", path).Msg("backup written")
	return path, nil
}

// Restore replaces the database and media directories with the contents
// of the archive. The database handle is closed for the extraction and
// reopened afterwards even when extraction fails.
func (s *BackupService) Restore(archivePath string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer zr.Close()

	dataDir := filepath.Dir(s.db.Path())
	dbName := filepath.Base(s.db.Path())

	if err := s.db.Close(); err != nil {
		return err
	}
	extractErr := extractAll(&zr.Reader, dataDir, dbName)
	if err := s.db.Reopen(); err != nil {
		return err
	}
	if extractErr != nil {
		return extractErr
	}
	s.log.Info().Str("archive", archivePath).Msg("backup restored")
	return nil
}

// WipeAll deletes every row, vacuums the file and recreates empty media
// directories.
func (s *BackupService) WipeAll() error {
	if err := s.products.WipeAll(); err != nil {
		return err
	}
	for _, dir := range []string{s.imagesDir, s.thumbsDir} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	s.log.Warn().Msg("all data wiped")
	return nil
}

func extractAll(zr *zip.Reader, dataDir, dbName string) error {
	for _, zf := range zr.File {
		name := filepath.ToSlash(zf.Name)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}

		var dest string
		switch {
		case !strings.Contains(name, "/") && strings.HasSuffix(name, ".db"):
			dest = filepath.Join(dataDir, dbName)
		default:
			dest = filepath.Join(dataDir, filepath.FromSlash(name))
		}

		// Zip-slip guard: the resolved destination must stay inside dataDir.
		rel, err := filepath.Rel(dataDir, dest)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
			return fmt.Errorf("%w: %s", ErrUnsafeArchive, zf.Name)
		}

		if err := extractFile(zf, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(zf *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := zf.Open()
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func addFile(zw *zip.Writer, path, arcName string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	w, err := zw.Create(filepath.ToSlash(arcName))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

func addDir(zw *zip.Writer, dir, arcPrefix string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, arcPrefix+"/"+filepath.ToSlash(rel))
	})
}
