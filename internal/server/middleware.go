package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"time"

	"taskhub/internal/domain/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinZapLogger пишет access-лог по завершении каждого запроса.
func GinZapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		fields := []zap.Field{
			zap.Int("status", ctx.Writer.Status()),
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.String("ip", ctx.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, zap.String("errors", ctx.Errors.String()))
		}

		if ctx.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}

type dualCloser struct {
	io.Reader
	gzipReader io.Closer
	bodyCloser io.Closer
}

func (dc *dualCloser) Close() error {
	var err1, err2 error
	if dc.gzipReader != nil {
		err1 = dc.gzipReader.Close()
	}
	if dc.bodyCloser != nil {
		err2 = dc.bodyCloser.Close()
	}
	if err1 != nil {
		return err1
	}
	return err2
}

func GzipRequestDecompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		encoding := strings.ToLower(ctx.GetHeader("Content-Encoding"))
		if strings.Contains(encoding, "gzip") {
			gr, err := gzip.NewReader(ctx.Request.Body)
			if err != nil {
				ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errors.ErrInvalidGzipRequest.Error()})
				return
			}

			ctx.Request.Body = &dualCloser{
				Reader:     gr,
				gzipReader: gr,
				bodyCloser: ctx.Request.Body,
			}

			ctx.Request.Header.Del("Content-Encoding")
			ctx.Request.Header.Del("Content-Length")
		}
		ctx.Next()
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gw *gzip.Writer
}

// Заголовки и gzip.Writer инициализируются лениво при первой записи:
// ответ без тела (204, 304) остаётся нетронутым.
func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if w.gw == nil {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")
		w.gw = gzip.NewWriter(w.ResponseWriter)
	}
	return w.gw.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func GzipResponseCompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodHead {
			ctx.Next()
			return
		}

		acceptEnc := strings.ToLower(ctx.GetHeader("Accept-Encoding"))
		if !strings.Contains(acceptEnc, "gzip") {
			ctx.Next()
			return
		}

		gw := &gzipResponseWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = gw

		ctx.Next()

		if gw.gw != nil {
			if err := gw.gw.Close(); err != nil {
				_ = ctx.Error(errors.ErrGzipCompressionFailed)
			}
		}
	}
}
