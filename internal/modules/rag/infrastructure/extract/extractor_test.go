package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingOracle 记录调用次数的假模型
type countingOracle struct {
	calls int32
	reply string
	err   error
}

func (o *countingOracle) Generate(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&o.calls, 1)
	return o.reply, o.err
}

func (o *countingOracle) GenerateWithImage(ctx context.Context, prompt, imageDataURL string) (string, error) {
	atomic.AddInt32(&o.calls, 1)
	return o.reply, o.err
}

func (o *countingOracle) GenerateWithFile(ctx context.Context, prompt, fileName, fileDataURL string) (string, error) {
	atomic.AddInt32(&o.calls, 1)
	return o.reply, o.err
}

func codeOf(t *testing.T, err error) int {
	t.Helper()
	var ce *xerr.CodeError
	require.ErrorAs(t, err, &ce)
	return ce.Code
}

func TestExtractLocalTextFile(t *testing.T) {
	e := NewExtractor(nil, 0, 0, 0)
	res, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceLocalFile,
		FileName:   "notes.txt",
		MimeType:   "text/plain",
		Data:       []byte("职业规划三步走"),
	})
	require.NoError(t, err)
	assert.Equal(t, "职业规划三步走", res.Text)
}

func TestExtractAcceptsMimeWithParams(t *testing.T) {
	e := NewExtractor(nil, 0, 0, 0)
	res, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceLocalFile,
		FileName:   "notes.md",
		MimeType:   "text/markdown; charset=utf-8",
		Data:       []byte("# title"),
	})
	require.NoError(t, err)
	assert.Equal(t, "# title", res.Text)
}

func TestExtractRejectsUnsupportedTypeBeforeAnyWork(t *testing.T) {
	oracle := &countingOracle{reply: "should not be used"}
	e := NewExtractor(oracle, 0, 0, 0)

	for _, mime := range []string{"application/x-executable", "application/zip", "video/mp4"} {
		_, err := e.Extract(context.Background(), Input{
			SourceType: document.SourceLocalFile,
			FileName:   "payload.bin",
			MimeType:   mime,
			Data:       []byte("data"),
		})
		assert.Equal(t, xerr.UnsupportedType, codeOf(t, err), "mime %s", mime)
	}
	assert.Zero(t, atomic.LoadInt32(&oracle.calls), "rejection must happen before the oracle is consulted")
}

func TestExtractRejectsOversizedPayload(t *testing.T) {
	e := NewExtractor(nil, 10, 0, 0)
	_, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceLocalFile,
		FileName:   "big.txt",
		MimeType:   "text/plain",
		Data:       []byte("0123456789A"),
	})
	assert.Equal(t, xerr.PayloadTooLarge, codeOf(t, err))
}

func TestExtractEmptyFileFails(t *testing.T) {
	e := NewExtractor(nil, 0, 0, 0)
	_, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceLocalFile,
		FileName:   "empty.txt",
		MimeType:   "text/plain",
		Data:       nil,
	})
	assert.Equal(t, xerr.ParseFailed, codeOf(t, err))
}

func TestExtractImageWithoutOracleFails(t *testing.T) {
	e := NewExtractor(nil, 0, 0, 0)
	_, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceLocalFile,
		FileName:   "pic.png",
		MimeType:   "image/png",
		Data:       []byte{0x89, 0x50},
	})
	assert.Equal(t, xerr.ParseFailed, codeOf(t, err))
}

func TestExtractImageDelegatesToOracle(t *testing.T) {
	oracle := &countingOracle{reply: "图片里是一份简历"}
	e := NewExtractor(oracle, 0, 0, 0)
	res, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceLocalFile,
		FileName:   "pic.png",
		MimeType:   "image/png",
		Data:       []byte{0x89, 0x50},
	})
	require.NoError(t, err)
	assert.Equal(t, "图片里是一份简历", res.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&oracle.calls))
}

func TestExtractDocumentOracleFailure(t *testing.T) {
	oracle := &countingOracle{err: errors.New("model overloaded")}
	e := NewExtractor(oracle, 0, 0, 0)
	_, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceLocalFile,
		FileName:   "resume.pdf",
		MimeType:   "application/pdf",
		Data:       []byte("%PDF-"),
	})
	assert.Equal(t, xerr.ParseFailed, codeOf(t, err))
}

func TestExtractFeishuFetchAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>doc body</html>"))
	}))
	defer srv.Close()

	// 未配置解析模型时直接返回原始内容
	e := NewExtractor(nil, 0, time.Second, 0)
	res, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceFeishuDocument,
		URL:        srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, "<html>doc body</html>", res.Text)

	// 配置解析模型时走结构化抽取
	oracle := &countingOracle{reply: "整理后的文档内容"}
	e = NewExtractor(oracle, 0, time.Second, 0)
	res, err = e.Extract(context.Background(), Input{
		SourceType: document.SourceFeishuSpreadsheet,
		URL:        srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, "整理后的文档内容", res.Text)
}

func TestExtractFeishuRemoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewExtractor(nil, 0, time.Second, 0)

	_, err := e.Extract(context.Background(), Input{
		SourceType: document.SourceFeishuDocument,
		URL:        srv.URL,
	})
	assert.Equal(t, xerr.RemoteFetchFailed, codeOf(t, err), "non-2xx response")

	_, err = e.Extract(context.Background(), Input{
		SourceType: document.SourceFeishuDocument,
		URL:        "not-a-url",
	})
	assert.Equal(t, xerr.RemoteFetchFailed, codeOf(t, err), "invalid url")

	_, err = e.Extract(context.Background(), Input{
		SourceType: document.SourceFeishuDocument,
		URL:        "   ",
	})
	assert.Equal(t, xerr.BadRequest, codeOf(t, err), "blank url")
}

func TestExtractUnknownSourceType(t *testing.T) {
	e := NewExtractor(nil, 0, 0, 0)
	_, err := e.Extract(context.Background(), Input{SourceType: "mystery"})
	assert.Equal(t, xerr.UnsupportedType, codeOf(t, err))
}
