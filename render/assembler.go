package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// concatClips joins composed scene clips in order via the concat demuxer.
// All clips share the same codec parameters, so the streams are copied.
func concatClips(ctx context.Context, clips []string, workDir, outFile string) error {
	listFile := filepath.Join(workDir, "concat_list.txt")
	var lines []string
	for _, clip := range clips {
		lines = append(lines, fmt.Sprintf("file '%s'", clip))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		"-movflags", "+faststart",
		outFile,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: concat: %v\n%s", ErrEncodeFailed, err, tail(out))
	}
	return nil
}

// finalize moves the finished program from its work path onto the target
// path. A file already present at the target is an explicit failure: a
// concurrent render may still be writing it.
func finalize(workFile, target string) error {
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%w: output path already exists: %s", ErrEncodeFailed, target)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: create output dir: %v", ErrEncodeFailed, err)
	}
	if err := os.Rename(workFile, target); err != nil {
		// Cross-device moves fall back to copy+rename.
		if copyErr := copyFile(workFile, target); copyErr != nil {
			return fmt.Errorf("%w: finalize: %v", ErrEncodeFailed, copyErr)
		}
		os.Remove(workFile)
	}
	return nil
}

// copyFile writes dst through a temp file in dst's directory, so a failed
// copy (disk full, interrupt) never leaves a partial file at dst.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy_*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
