package store

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sort"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var firebaseScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/firebase.database",
}

// Firebase implements Database against a Realtime Database instance. CRUD
// goes through the Admin SDK; Watch speaks the RTDB REST streaming protocol
// directly because the Go SDK exposes no listener API.
type Firebase struct {
	client *db.Client
	dbURL  string
	tokens oauth2.TokenSource
	hc     *http.Client
}

func NewFirebase(ctx context.Context, databaseURL, credentialsFile string) (*Firebase, error) {
	app, err := firebase.NewApp(ctx,
		&firebase.Config{DatabaseURL: databaseURL},
		option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "store: init firebase app")
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "store: init database client")
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "store: read credentials")
	}
	creds, err := google.CredentialsFromJSON(ctx, data, firebaseScopes...)
	if err != nil {
		return nil, errors.Wrap(err, "store: parse credentials")
	}

	return &Firebase{
		client: client,
		dbURL:  strings.TrimRight(databaseURL, "/"),
		tokens: creds.TokenSource,
		hc:     &http.Client{},
	}, nil
}

func (f *Firebase) Get(ctx context.Context, path string, v interface{}) error {
	var raw json.RawMessage
	if err := f.client.NewRef(path).Get(ctx, &raw); err != nil {
		return errors.Wrapf(err, "store: get %s", path)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return ErrNotFound
	}
	return errors.Wrapf(json.Unmarshal(raw, v), "store: get %s", path)
}

func (f *Firebase) Set(ctx context.Context, path string, v interface{}) error {
	return errors.Wrapf(f.client.NewRef(path).Set(ctx, v), "store: set %s", path)
}

func (f *Firebase) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	return errors.Wrapf(f.client.NewRef(path).Update(ctx, fields), "store: update %s", path)
}

func (f *Firebase) Push(ctx context.Context, path string, v interface{}) (string, error) {
	ref, err := f.client.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", errors.Wrapf(err, "store: push %s", path)
	}
	return ref.Key, nil
}

func (f *Firebase) Delete(ctx context.Context, path string) error {
	return errors.Wrapf(f.client.NewRef(path).Delete(ctx), "store: delete %s", path)
}

// streamEvent is the payload of an SSE put/patch frame.
type streamEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

func (f *Firebase) Watch(ctx context.Context, path string) (<-chan Event, error) {
	tok, err := f.tokens.Token()
	if err != nil {
		return nil, errors.Wrap(err, "store: fetch access token")
	}

	url := f.dbURL + "/" + strings.Trim(path, "/") + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "store: watch %s", path)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "store: watch %s", path)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("store: watch %s: unexpected status %d", path, resp.StatusCode)
	}

	ch := make(chan Event, 64)
	go f.readStream(ctx, path, resp, ch)
	return ch, nil
}

// readStream parses SSE frames until the connection breaks. The initial
// "put" at path "/" carries the whole subtree; later puts at "/<key>" are
// appended children. Patches and keep-alives are ignored.
func (f *Firebase) readStream(ctx context.Context, path string, resp *http.Response, ch chan<- Event) {
	defer resp.Body.Close()
	defer close(ch)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var eventName string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if eventName != "put" {
				continue
			}
			var se streamEvent
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if err := json.Unmarshal([]byte(payload), &se); err != nil {
				zap.L().Warn("store: bad stream frame", zap.String("path", path), zap.Error(err))
				continue
			}
			f.emit(ctx, se, ch)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		zap.L().Warn("store: stream closed", zap.String("path", path), zap.Error(err))
	}
}

func (f *Firebase) emit(ctx context.Context, se streamEvent, ch chan<- Event) {
	if string(se.Data) == "null" {
		return
	}
	if se.Path == "/" {
		// full snapshot: fan out every child in key order
		var children map[string]json.RawMessage
		if err := json.Unmarshal(se.Data, &children); err != nil {
			zap.L().Warn("store: bad stream snapshot", zap.Error(err))
			return
		}
		keys := make([]string, 0, len(children))
		for k := range children {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			select {
			case ch <- Event{Key: k, Data: children[k]}:
			case <-ctx.Done():
				return
			}
		}
		return
	}
	// direct child put: path is "/<key>"
	key := strings.Trim(se.Path, "/")
	if key == "" || strings.Contains(key, "/") {
		return
	}
	select {
	case ch <- Event{Key: key, Data: se.Data}:
	case <-ctx.Done():
	}
}
