package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

// Memory is an in-process Database used by tests. Values are normalized
// through JSON so Get behaves like the remote store. Push keys come from a
// snowflake node; as fixed-width decimal strings they sort in insertion
// order, matching the chronological ordering of real push keys.
type Memory struct {
	mu       sync.RWMutex
	root     map[string]interface{}
	node     *snowflake.Node
	watchers map[string][]chan Event
}

func NewMemory() *Memory {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return &Memory{
		root:     make(map[string]interface{}),
		node:     node,
		watchers: make(map[string][]chan Event),
	}
}

func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// normalize round-trips v through JSON into generic maps and scalars.
func normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "store: marshal value")
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "store: unmarshal value")
	}
	return out, nil
}

// lookup walks the tree; returns nil when the path does not exist.
func (m *Memory) lookup(segs []string) interface{} {
	var cur interface{} = m.root
	for _, s := range segs {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = obj[s]
		if !ok {
			return nil
		}
	}
	return cur
}

// branch walks to the parent of the final segment, creating maps on the way.
func (m *Memory) branch(segs []string) (map[string]interface{}, string) {
	cur := m.root
	for _, s := range segs[:len(segs)-1] {
		next, ok := cur[s].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[s] = next
		}
		cur = next
	}
	return cur, segs[len(segs)-1]
}

func (m *Memory) Get(_ context.Context, path string, v interface{}) error {
	m.mu.RLock()
	val := m.lookup(splitPath(path))
	m.mu.RUnlock()
	if val == nil {
		return ErrNotFound
	}
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "store: get %s", path)
	}
	return errors.Wrapf(json.Unmarshal(data, v), "store: get %s", path)
}

func (m *Memory) Set(_ context.Context, path string, v interface{}) error {
	val, err := normalize(v)
	if err != nil {
		return err
	}
	segs := splitPath(path)
	if len(segs) == 0 {
		return errors.New("store: empty path")
	}
	m.mu.Lock()
	parent, leaf := m.branch(segs)
	parent[leaf] = val
	m.mu.Unlock()
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]interface{}) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		return errors.New("store: empty path")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	parent, leaf := m.branch(segs)
	obj, ok := parent[leaf].(map[string]interface{})
	if !ok {
		obj = make(map[string]interface{})
		parent[leaf] = obj
	}
	for k, v := range fields {
		if v == nil {
			delete(obj, k)
			continue
		}
		val, err := normalize(v)
		if err != nil {
			return err
		}
		obj[k] = val
	}
	return nil
}

func (m *Memory) Push(ctx context.Context, path string, v interface{}) (string, error) {
	key := m.node.Generate().String()
	if err := m.Set(ctx, path+"/"+key, v); err != nil {
		return "", err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrapf(err, "store: push %s", path)
	}
	m.mu.RLock()
	for _, ch := range m.watchers[strings.Trim(path, "/")] {
		select {
		case ch <- Event{Key: key, Data: data}:
		default:
		}
	}
	m.mu.RUnlock()
	return key, nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		return errors.New("store: empty path")
	}
	m.mu.Lock()
	parent, leaf := m.branch(segs)
	delete(parent, leaf)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Watch(ctx context.Context, path string) (<-chan Event, error) {
	clean := strings.Trim(path, "/")
	ch := make(chan Event, 64)

	m.mu.Lock()
	// replay existing children in key order before going live
	if obj, ok := m.lookup(splitPath(clean)).(map[string]interface{}); ok {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			data, err := json.Marshal(obj[k])
			if err != nil {
				continue
			}
			ch <- Event{Key: k, Data: data}
		}
	}
	m.watchers[clean] = append(m.watchers[clean], ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		ws := m.watchers[clean]
		for i, w := range ws {
			if w == ch {
				m.watchers[clean] = append(ws[:i], ws[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
