package adapters

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/opencontainers/go-digest"

	"pkgfilehash/internal/ports"
	"pkgfilehash/internal/shared"
	"pkgfilehash/internal/types"
)

const DefaultChunkSize = 8192

// ContentHasherAdapter streams file content through SHA-256. Symlinks are
// resolved inside the root filesystem, never against the host.
type ContentHasherAdapter struct {
	ChunkSize int
	FileTypes ports.FileTypePort
}

func NewContentHasherAdapter(chunkSize int) ContentHasherAdapter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return ContentHasherAdapter{
		ChunkSize: chunkSize,
		FileTypes: NewMagicFileTypeAdapter(),
	}
}

func (a ContentHasherAdapter) Hash(ctx context.Context, root string, rel string) types.HashResult {
	result := types.HashResult{}
	if ctx.Err() != nil {
		result.FileType = types.FileTypeError
		return result
	}
	full := shared.RootJoin(root, rel)
	info, err := os.Lstat(full)
	if err != nil {
		result.FileType = types.FileTypeError
		return result
	}

	real := full
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(full)
		if err != nil {
			result.FileType = types.FileTypeError
			return result
		}
		result.IsSymlink = true
		result.SymlinkTarget = &target
		real, err = shared.ResolveInRoot(root, rel)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, shared.ErrSymlinkLoop) {
				result.FileType = types.FileTypeBrokenSymlink
			} else {
				result.FileType = types.FileTypeError
			}
			return result
		}
	}

	stat, err := os.Stat(real)
	switch {
	case err != nil && result.IsSymlink && errors.Is(err, fs.ErrNotExist):
		result.FileType = types.FileTypeBrokenSymlink
		return result
	case err != nil:
		result.FileType = types.FileTypeError
		return result
	case !stat.Mode().IsRegular() && result.IsSymlink:
		result.FileType = types.FileTypeBrokenSymlink
		return result
	case stat.IsDir():
		result.FileType = types.FileTypeDirectory
		return result
	case !stat.Mode().IsRegular():
		result.FileType = types.FileTypeUnknown
		return result
	}

	sum, err := a.digestFile(real)
	if err != nil {
		result.FileType = types.FileTypeError
		return result
	}
	result.SHA256 = &sum
	result.FileType = a.classify(real)
	return result
}

// digestFile returns the lowercase hex SHA-256 of the file, read in
// ChunkSize pieces.
func (a ContentHasherAdapter) digestFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	chunkSize := a.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	digester := digest.SHA256.Digester()
	buf := make([]byte, chunkSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			if _, werr := digester.Hash().Write(buf[:n]); werr != nil {
				return "", werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return digester.Digest().Encoded(), nil
}

func (a ContentHasherAdapter) classify(path string) string {
	if a.FileTypes == nil {
		return types.FileTypeUnknown
	}
	return a.FileTypes.Classify(path)
}

var _ ports.ContentHasherPort = ContentHasherAdapter{}
