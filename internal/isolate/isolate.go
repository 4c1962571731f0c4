package isolate

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Isolate hands out sandbox boxes. Box ids are reused once their box is closed.
type Isolate struct {
	binary   string
	idsInUse mapset.Set[int]
	mutex    sync.Mutex
}

func New(binary string) *Isolate {
	if binary == "" {
		binary = "isolate"
	}
	return &Isolate{
		binary:   binary,
		idsInUse: mapset.NewThreadUnsafeSet[int](),
	}
}

func (i *Isolate) NewBox(ctx context.Context) (*Box, error) {
	i.mutex.Lock()
	id := 0
	for i.idsInUse.Contains(id) {
		id++
	}
	i.idsInUse.Add(id)
	i.mutex.Unlock()

	if err := i.cleanupBox(ctx, id); err != nil {
		i.release(id)
		return nil, err
	}

	path, err := i.initBox(ctx, id)
	if err != nil {
		i.release(id)
		return nil, err
	}

	return &Box{id: id, path: path, isolate: i}, nil
}

func (i *Isolate) release(id int) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.idsInUse.Remove(id)
}

func (i *Isolate) cleanupBox(ctx context.Context, boxId int) error {
	out, err := exec.CommandContext(ctx, i.binary, "--cg", "--cleanup", "--box-id", strconv.Itoa(boxId)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to clean up box %d: %w: %s", boxId, err, out)
	}
	return nil
}

// initBox initializes a new box with the given id and returns the path to the box
func (i *Isolate) initBox(ctx context.Context, boxId int) (string, error) {
	out, err := exec.CommandContext(ctx, i.binary, "--cg", "--init", "--box-id", strconv.Itoa(boxId)).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to init box %d: %w: %s", boxId, err, out)
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// Version runs isolate --version. Used to check the sandbox is installed.
func (i *Isolate) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, i.binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("isolate --version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
