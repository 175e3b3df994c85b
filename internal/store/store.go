// Package store is the per-user document store: collections of JSON documents
// under users/{uid}, with whole-snapshot subscriptions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Asgar77/goodminds-app/internal/models"
	"github.com/Asgar77/goodminds-app/internal/realtime"
	"github.com/Asgar77/goodminds-app/internal/realtime/bus"
)

// WriteOptions control Write. With Merge, fields already stored but not
// supplied are kept; otherwise the document is replaced.
type WriteOptions struct {
	Merge bool
}

// Document is a stored document as seen by readers.
type Document struct {
	ID         string         `json:"id"`
	Path       string         `json:"path"`
	Fields     map[string]any `json:"fields"`
	CreateTime time.Time      `json:"createTime"`
	UpdateTime time.Time      `json:"updateTime"`
}

// DataTo decodes the document fields into v through their JSON form.
func (d Document) DataTo(v any) error {
	raw, err := json.Marshal(d.Fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Snapshot is the full state of a subscribed path. For a document path
// Exists and Document are set; for a collection path Documents holds every
// document in creation order.
type Snapshot struct {
	Path      string     `json:"path"`
	Exists    bool       `json:"exists"`
	Document  *Document  `json:"document,omitempty"`
	Documents []Document `json:"documents,omitempty"`
}

type Store struct {
	db  *gorm.DB
	log *zap.Logger
	bus bus.Bus
	hub *realtime.Hub
	now func() time.Time

	startOnce sync.Once
	startErr  error
}

// New creates a store over db. A nil bus means in-process notifications only.
func New(db *gorm.DB, log *zap.Logger, b bus.Bus) *Store {
	if b == nil {
		b = bus.NewLocalBus()
	}
	return &Store{
		db:  db,
		log: log.Named("store"),
		bus: b,
		hub: realtime.NewHub(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Start connects the change bus to local subscriptions. It is idempotent and
// is called implicitly by Subscribe.
func (s *Store) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		s.startErr = s.bus.StartForwarder(ctx, s.hub.Dispatch)
	})
	return s.startErr
}

func (s *Store) Close() error { return s.bus.Close() }

// Write creates or overwrites the document at docPath.
func (s *Store) Write(ctx context.Context, docPath string, fields map[string]any, opts WriteOptions) error {
	p, err := ParsePath(docPath)
	if err != nil {
		return &WriteError{Path: docPath, Err: err}
	}
	if !p.IsDocument() {
		return &WriteError{Path: docPath, Err: fmt.Errorf("%w: %q is a collection", ErrInvalidPath, docPath)}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		data := make(map[string]any, len(fields))
		if opts.Merge {
			var existing models.Document
			err := tx.Where("path = ?", p.String()).Take(&existing).Error
			switch {
			case err == nil:
				maps.Copy(data, existing.Fields)
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		maps.Copy(data, fields)

		now := s.now()
		doc := models.Document{
			Path:       p.String(),
			Collection: p.Parent(),
			UserID:     p.UserID(),
			Fields:     datatypes.JSONMap(data),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_at"}),
		}).Create(&doc).Error
	})
	if err != nil {
		return &WriteError{Path: docPath, Err: err}
	}

	s.publish(ctx, p.String())
	return nil
}

// Add appends a document with a generated id to a collection.
func (s *Store) Add(ctx context.Context, collectionPath string, fields map[string]any) (string, error) {
	p, err := ParsePath(collectionPath)
	if err != nil {
		return "", &WriteError{Path: collectionPath, Err: err}
	}
	if p.IsDocument() {
		return "", &WriteError{Path: collectionPath, Err: fmt.Errorf("%w: %q is a document", ErrInvalidPath, collectionPath)}
	}
	id := uuid.NewString()
	if err := s.Write(ctx, p.String()+"/"+id, fields, WriteOptions{}); err != nil {
		return "", err
	}
	return id, nil
}

// Read returns the document at docPath; found is false when it does not exist.
func (s *Store) Read(ctx context.Context, docPath string) (doc Document, found bool, err error) {
	p, err := ParsePath(docPath)
	if err != nil {
		return Document{}, false, &ReadError{Path: docPath, Err: err}
	}

	var row models.Document
	err = s.db.WithContext(ctx).Where("path = ?", p.String()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, &ReadError{Path: docPath, Err: err}
	}
	return toDocument(row), true, nil
}

// List returns every document of a collection in creation order.
func (s *Store) List(ctx context.Context, collectionPath string) ([]Document, error) {
	p, err := ParsePath(collectionPath)
	if err != nil {
		return nil, &ReadError{Path: collectionPath, Err: err}
	}
	if p.IsDocument() {
		return nil, &ReadError{Path: collectionPath, Err: fmt.Errorf("%w: %q is a document", ErrInvalidPath, collectionPath)}
	}

	var rows []models.Document
	err = s.db.WithContext(ctx).
		Where("collection = ?", p.String()).
		Order("created_at ASC").Order("path ASC").
		Find(&rows).Error
	if err != nil {
		return nil, &ReadError{Path: collectionPath, Err: err}
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toDocument(row))
	}
	return docs, nil
}

// Delete removes exactly the document at docPath. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, docPath string) error {
	p, err := ParsePath(docPath)
	if err != nil {
		return &WriteError{Path: docPath, Err: err}
	}
	if !p.IsDocument() {
		return &WriteError{Path: docPath, Err: fmt.Errorf("%w: %q is a collection", ErrInvalidPath, docPath)}
	}

	res := s.db.WithContext(ctx).Where("path = ?", p.String()).Delete(&models.Document{})
	if res.Error != nil {
		return &WriteError{Path: docPath, Err: res.Error}
	}
	if res.RowsAffected > 0 {
		s.publish(ctx, p.String())
	}
	return nil
}

// DeleteUser removes every document owned by uid.
func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	var paths []string
	if err := s.db.WithContext(ctx).Model(&models.Document{}).Where("user_id = ?", uid).Pluck("path", &paths).Error; err != nil {
		return &WriteError{Path: UserDoc(uid), Err: err}
	}
	if err := s.db.WithContext(ctx).Where("user_id = ?", uid).Delete(&models.Document{}).Error; err != nil {
		return &WriteError{Path: UserDoc(uid), Err: err}
	}
	for _, p := range paths {
		s.publish(ctx, p)
	}
	return nil
}

// Subscribe delivers the current snapshot of path to onSnapshot and a fresh
// full snapshot after every later change. Bursts of changes may be coalesced
// into one delivery. Deliveries for one subscription never overlap. The
// subscription ends when ctx is done or unsubscribe is called.
func (s *Store) Subscribe(ctx context.Context, path string, onSnapshot func(Snapshot)) (unsubscribe func(), err error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if err := s.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	dirty := make(chan struct{}, 1)
	signal := func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	}
	cancelHub := s.hub.Subscribe(p.String(), signal)
	signal()

	done := make(chan struct{})
	var once sync.Once
	unsubscribe = func() {
		once.Do(func() {
			cancelHub()
			close(done)
		})
	}

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-dirty:
			}
			snap, err := s.snapshot(ctx, p)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn("snapshot failed", zap.String("path", p.String()), zap.Error(err))
				}
				continue
			}
			select {
			case <-done:
				return
			default:
			}
			onSnapshot(snap)
		}
	}()

	return unsubscribe, nil
}

func (s *Store) snapshot(ctx context.Context, p Path) (Snapshot, error) {
	snap := Snapshot{Path: p.String()}
	if p.IsDocument() {
		doc, found, err := s.Read(ctx, p.String())
		if err != nil {
			return Snapshot{}, err
		}
		if found {
			snap.Exists = true
			snap.Document = &doc
		}
		return snap, nil
	}
	docs, err := s.List(ctx, p.String())
	if err != nil {
		return Snapshot{}, err
	}
	snap.Exists = len(docs) > 0
	snap.Documents = docs
	return snap, nil
}

func (s *Store) publish(ctx context.Context, path string) {
	// The write already succeeded; a lost notification only delays subscribers.
	if err := s.bus.Publish(context.WithoutCancel(ctx), realtime.Change{Path: path}); err != nil {
		s.log.Warn("change notification failed", zap.String("path", path), zap.Error(err))
	}
}

func toDocument(row models.Document) Document {
	p, _ := ParsePath(row.Path)
	return Document{
		ID:         p.ID(),
		Path:       row.Path,
		Fields:     map[string]any(row.Fields),
		CreateTime: row.CreatedAt,
		UpdateTime: row.UpdatedAt,
	}
}
