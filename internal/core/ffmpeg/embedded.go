package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	"github.com/tetratelabs/wazero"
)

// runEmbedded runs the WASM ffmpeg build. The sandbox only sees the
// directories in dirs, mounted at their absolute host paths.
func runEmbedded(ctx context.Context, args []string, dirs []string) ([]byte, error) {
	mounts := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		mounts[abs] = true
	}

	var stderr bytes.Buffer
	rc, err := ffmpreg.Ffmpeg(ctx, wasm.Args{
		Stdout: io.Discard,
		Stderr: &stderr,
		Args:   args,
		Config: func(cfg wazero.ModuleConfig) wazero.ModuleConfig {
			fs := wazero.NewFSConfig()
			for dir := range mounts {
				fs = fs.WithDirMount(dir, dir)
			}
			return cfg.WithFSConfig(fs)
		},
	})
	if err != nil {
		return stderr.Bytes(), err
	}
	if rc != 0 {
		return stderr.Bytes(), fmt.Errorf("ffmpeg exited with code %d", rc)
	}
	return stderr.Bytes(), nil
}
