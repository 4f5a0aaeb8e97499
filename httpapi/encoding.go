package httpapi

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
)

// ErrUnknownEncoding is returned for an encoding name the encoder does not
// produce.
var ErrUnknownEncoding = errors.New("unknown content encoding")

// Encoder compresses response bodies with pooled writers. The zero encoding
// name means identity.
type Encoder struct {
	bufferPool       sync.Pool
	gzipWriterPool   sync.Pool
	zlibWriterPool   sync.Pool
	brotliWriterPool sync.Pool
}

// NewEncoder creates an Encoder with warm writer pools.
func NewEncoder() *Encoder {
	return &Encoder{
		bufferPool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
		gzipWriterPool: sync.Pool{
			New: func() interface{} {
				return gzip.NewWriter(nil)
			},
		},
		zlibWriterPool: sync.Pool{
			New: func() interface{} {
				return zlib.NewWriter(nil)
			},
		},
		brotliWriterPool: sync.Pool{
			New: func() interface{} {
				return brotli.NewWriter(nil)
			},
		},
	}
}

// Negotiate picks the response encoding for an Accept-Encoding header,
// preferring brotli, then gzip, then deflate. An empty result means identity.
func (e *Encoder) Negotiate(acceptEncoding string) string {
	offered := map[string]bool{}
	for _, part := range strings.Split(acceptEncoding, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.TrimSpace(name)
		if raw, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if q, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && q <= 0 {
				continue
			}
		}
		offered[name] = true
	}
	for _, name := range []string{"br", "gzip", "deflate"} {
		if offered[name] || offered["*"] {
			return name
		}
	}
	return ""
}

// Encode compresses data with the named encoding.
func (e *Encoder) Encode(encoding string, data []byte) ([]byte, error) {
	switch encoding {
	case "":
		return data, nil
	case "gzip":
		return e.gzipEncode(data)
	case "deflate":
		return e.zlibEncode(data)
	case "br":
		return e.brotliEncode(data)
	default:
		return nil, errors.Wrapf(ErrUnknownEncoding, "%q", encoding)
	}
}

func (e *Encoder) gzipEncode(data []byte) ([]byte, error) {
	w := e.gzipWriterPool.Get().(*gzip.Writer)
	defer e.gzipWriterPool.Put(w)

	buf := e.bufferPool.Get().(*bytes.Buffer)
	defer e.bufferPool.Put(buf)

	buf.Reset()
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

func (e *Encoder) zlibEncode(data []byte) ([]byte, error) {
	w := e.zlibWriterPool.Get().(*zlib.Writer)
	defer e.zlibWriterPool.Put(w)

	buf := e.bufferPool.Get().(*bytes.Buffer)
	defer e.bufferPool.Put(buf)

	buf.Reset()
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

func (e *Encoder) brotliEncode(data []byte) ([]byte, error) {
	w := e.brotliWriterPool.Get().(*brotli.Writer)
	defer e.brotliWriterPool.Put(w)

	buf := e.bufferPool.Get().(*bytes.Buffer)
	defer e.bufferPool.Put(buf)

	buf.Reset()
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}
