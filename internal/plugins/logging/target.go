package logging

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
)

type TargetKind int

const (
	KindStdout TargetKind = iota
	KindStderr
	KindLogDir
	KindFolder
)

func (k TargetKind) String() string {
	switch k {
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	case KindLogDir:
		return "log-dir"
	case KindFolder:
		return "folder"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

type Target struct {
	Kind TargetKind
	// Path is only used by folder targets.
	Path string
	// FileName is the file stem without extension. Empty means the product name.
	FileName string
}

func Stdout() Target { return Target{Kind: KindStdout} }
func Stderr() Target { return Target{Kind: KindStderr} }

// LogDir writes to the platform log directory derived from the app identifier.
func LogDir(fileName string) Target {
	return Target{Kind: KindLogDir, FileName: fileName}
}

func Folder(path, fileName string) Target {
	return Target{Kind: KindFolder, Path: path, FileName: fileName}
}

func (p *Plugin) openTarget(t Target, identifier, productName string) (io.Writer, error) {
	switch t.Kind {
	case KindStdout:
		return p.format(p.stdout, false), nil
	case KindStderr:
		return p.format(p.stderr, false), nil
	case KindLogDir, KindFolder:
		dir := t.Path
		if t.Kind == KindLogDir {
			var err error
			if dir, err = p.logDir(identifier); err != nil {
				return nil, fmt.Errorf("resolve log dir: %w", err)
			}
		}
		if dir == "" {
			return nil, fmt.Errorf("%s target without a directory", t.Kind)
		}

		stem := t.FileName
		if stem == "" {
			stem = productName
		}
		f, err := openRotatingFile(filepath.Join(dir, stem+".log"), p.maxFileSize, p.rotation, p.now)
		if err != nil {
			return nil, err
		}
		p.files = append(p.files, f)
		return p.format(f, true), nil
	default:
		return nil, fmt.Errorf("unknown target kind %s", t.Kind)
	}
}

func (p *Plugin) format(w io.Writer, file bool) io.Writer {
	if p.json {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    file,
		TimeFormat: "2006-01-02 15:04:05",
	}
}
