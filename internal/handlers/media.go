package handlers

import (
	"io/fs"
	"net/http"
	"os"
)

// Media serves uploaded files from a local directory. Directories are
// reported as missing so their contents cannot be listed.
func Media(root string) http.Handler {
	return http.FileServerFS(filesOnly{os.DirFS(root)})
}

type filesOnly struct{ fsys fs.FS }

func (f filesOnly) Open(name string) (fs.File, error) {
	file, err := f.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
