package digest

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer 把早报写进输出目录，文件名带当天日期戳，重复运行会覆盖。
// 先写临时文件再改名，渲染或写入中途失败不会留下半截文件。
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir}
}

// WriteAll 按 formats 依次写出，返回写成的文件路径
func (w *Writer) WriteAll(d *Digest, formats []string) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir %s: %w", w.dir, err)
	}

	stamp := d.GeneratedAt.Format("20060102")
	var files []string
	for _, format := range formats {
		var (
			name string
			data []byte
			err  error
		)
		switch format {
		case "txt":
			name = fmt.Sprintf("news_digest_%s.txt", stamp)
			data = []byte(d.RenderTXT())
		case "json":
			name = fmt.Sprintf("news_data_%s.json", stamp)
			data, err = d.RenderJSON()
		case "html":
			name = fmt.Sprintf("news_digest_%s.html", stamp)
			data, err = d.RenderHTML()
		default:
			return files, fmt.Errorf("unknown output format %q", format)
		}
		if err != nil {
			return files, err
		}

		path := filepath.Join(w.dir, name)
		if err := writeAtomic(path, data); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
