package writers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// WriteAll writes every named artifact into dir in parallel. The payload must
// not change until WriteAll returns. The first failure cancels the rest.
func WriteAll(ctx context.Context, dir string, names []string, payload any) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeFile(filepath.Join(dir, name), name, payload)
		})
	}
	return g.Wait()
}

func writeFile(path, name string, payload any) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	bw := bufio.NewWriterSize(tmp, 1<<16)
	if err = Write(name, bw, payload); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
