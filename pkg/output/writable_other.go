//go:build !unix

package output

import "os"

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".getnative-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
