package isolate

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
)

type Box struct {
	id      int
	path    string
	isolate *Isolate
}

func (box *Box) Id() int {
	return box.id
}

func (box *Box) Path() string {
	return box.path
}

func (box *Box) Close() error {
	defer box.isolate.release(box.id)
	return box.isolate.cleanupBox(context.Background(), box.id)
}

// runArgs builds the isolate command line running path inside the box. Every
// directory the program touches (its own, the working dir and those of
// absolute arguments) is bound read-only at the same path.
func (box *Box) runArgs(metaPath string, c Constraints, workDir, path string, args []string) []string {
	res := []string{"--cg", "--box-id", strconv.Itoa(box.id), "--meta=" + metaPath, "--env=HOME=/box"}
	res = append(res, c.ToArgs()...)
	for _, dir := range boundDirs(workDir, path, args) {
		res = append(res, "--dir="+dir)
	}
	if workDir != "" {
		res = append(res, "--chdir="+workDir)
	}
	res = append(res, "--run", "--", path)
	return append(res, args...)
}

func boundDirs(workDir, path string, args []string) []string {
	dirs := mapset.NewThreadUnsafeSet[string]()
	dirs.Add(filepath.Dir(path))
	if workDir != "" {
		dirs.Add(workDir)
	}
	for _, a := range args {
		if filepath.IsAbs(a) {
			dirs.Add(filepath.Dir(a))
		}
	}
	res := dirs.ToSlice()
	sort.Strings(res)
	return res
}

func newMetaFile() (string, error) {
	file, err := os.CreateTemp("", "isolate.*.meta")
	if err != nil {
		return "", err
	}
	err = file.Close()
	if err != nil {
		return "", err
	}
	return file.Name(), nil
}
