// Package archive persists generated insight envelopes to GCS out of band.
// Archival is best-effort: it never blocks or fails a request.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"

	"github.com/dvloznov/insight-service/internal/insight"
)

const (
	writeTimeout = 30 * time.Second
	queueSize    = 64
)

type record struct {
	fingerprint string
	envelope    *insight.Envelope
}

// GCSArchiver writes one JSON object per generated envelope under
// insights/<date>/<fingerprint>.json, consumed from a bounded queue by a
// single background worker.
type GCSArchiver struct {
	client    *storage.Client
	bucket    string
	queue     chan record
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
	log       zerolog.Logger
}

// NewGCSArchiver creates an archiver for the given bucket and starts its
// worker. Assumes Application Default Credentials.
func NewGCSArchiver(ctx context.Context, bucket string, log zerolog.Logger) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: create storage client: %w", err)
	}

	a := &GCSArchiver{
		client: client,
		bucket: bucket,
		queue:  make(chan record, queueSize),
		done:   make(chan struct{}),
		log:    log,
	}
	a.wg.Add(1)
	go a.worker()
	return a, nil
}

// Enqueue schedules an envelope for archival. Non-blocking: when the queue is
// full or the archiver is stopped, the record is dropped and logged.
func (a *GCSArchiver) Enqueue(fingerprint string, envelope *insight.Envelope) {
	select {
	case <-a.done:
		a.log.Debug().Str("fingerprint", fingerprint).Msg("Archiver stopped, dropping record")
	default:
		select {
		case a.queue <- record{fingerprint: fingerprint, envelope: envelope}:
		default:
			a.log.Warn().Str("fingerprint", fingerprint).Msg("Archive queue full, dropping record")
		}
	}
}

func (a *GCSArchiver) worker() {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case rec := <-a.queue:
					a.store(rec)
				default:
					return
				}
			}
		case rec := <-a.queue:
			a.store(rec)
		}
	}
}

func (a *GCSArchiver) store(rec record) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	data, err := json.Marshal(rec.envelope)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to encode envelope for archival")
		return
	}

	objectName := fmt.Sprintf("insights/%s/%s.json",
		time.Now().UTC().Format("2006-01-02"), rec.fingerprint)

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		a.log.Warn().Err(err).Str("object", objectName).Msg("Failed to write archive object")
		return
	}
	if err := w.Close(); err != nil {
		a.log.Warn().Err(err).Str("object", objectName).Msg("Failed to finalize archive object")
		return
	}

	a.log.Debug().Str("object", objectName).Msg("Archived insight envelope")
}

// Close stops the worker after draining the queue and releases the storage
// client.
func (a *GCSArchiver) Close() error {
	a.closeOnce.Do(func() {
		close(a.done)
	})
	a.wg.Wait()
	return a.client.Close()
}
