package flash

import "os"

// unixOpenSized opens path for read/write, creating it and growing it to
// size bytes if it is new or short, so NewMapped always has a full-size
// file to mmap.
func unixOpenSized(path string, size int) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
