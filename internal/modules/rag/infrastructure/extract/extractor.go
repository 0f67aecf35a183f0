package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"CareerRAG/internal/modules/rag/domain/document"
	"CareerRAG/internal/modules/rag/domain/repository"
	"CareerRAG/pkg/xerr"
)

// 文件种类（决定走哪条抽取路径）
const (
	kindText     = "text"
	kindImage    = "image"
	kindDocument = "document"
)

// 本地上传允许的 mimetype 白名单
var allowedMimeTypes = map[string]string{
	"image/png":          kindImage,
	"image/jpeg":         kindImage,
	"image/gif":          kindImage,
	"image/bmp":          kindImage,
	"image/webp":         kindImage,
	"application/pdf":    kindDocument,
	"application/msword": kindDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": kindDocument,
	"text/plain":    kindText,
	"text/markdown": kindText,
}

// SupportedTypes 对外公布的支持类型清单（/supported-types 接口）
func SupportedTypes() map[string][]string {
	return map[string][]string{
		"images":    {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"},
		"documents": {".pdf", ".doc", ".docx"},
		"text":      {".txt", ".md"},
		"feishu":    {"飞书文档", "飞书表格"},
	}
}

// Input 抽取输入：本地文件为字节流 + 声明的 mimetype，飞书来源为引用 URL
type Input struct {
	SourceType document.SourceType
	FileName   string
	MimeType   string
	Data       []byte
	URL        string
}

// Result 抽取结果
type Result struct {
	Text string
	Kind string
}

// Extractor 内容抽取器。对输入是纯函数：不触碰任何共享状态。
// 非文本文件与飞书内容的语义化抽取委托给文本生成模型。
type Extractor struct {
	oracle        repository.TextOracle
	client        *http.Client
	maxBytes      int64
	oracleTimeout time.Duration
}

func NewExtractor(oracle repository.TextOracle, maxBytes int64, fetchTimeout, oracleTimeout time.Duration) *Extractor {
	if maxBytes <= 0 {
		maxBytes = 50 * 1024 * 1024
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	if oracleTimeout <= 0 {
		oracleTimeout = 2 * time.Minute
	}
	return &Extractor{
		oracle:        oracle,
		client:        &http.Client{Timeout: fetchTimeout},
		maxBytes:      maxBytes,
		oracleTimeout: oracleTimeout,
	}
}

// Extract 按来源类型分发抽取。
// 所有失败都映射为可区分的 CodeError，调用方据此决定重试或直接报给用户。
func (e *Extractor) Extract(ctx context.Context, in Input) (*Result, error) {
	switch in.SourceType {
	case document.SourceLocalFile:
		return e.extractLocal(ctx, in)
	case document.SourceFeishuDocument:
		return e.extractFeishu(ctx, in, feishuDocumentPrompt)
	case document.SourceFeishuSpreadsheet:
		return e.extractFeishu(ctx, in, feishuSpreadsheetPrompt)
	default:
		return nil, xerr.New(xerr.UnsupportedType, fmt.Sprintf("未知的来源类型: %s", in.SourceType))
	}
}

func (e *Extractor) extractLocal(ctx context.Context, in Input) (*Result, error) {
	// mimetype 白名单检查先于一切 I/O
	kind, ok := allowedMimeTypes[normalizeMime(in.MimeType)]
	if !ok {
		return nil, xerr.New(xerr.UnsupportedType, fmt.Sprintf("不支持的文件类型: %s", in.MimeType))
	}
	if int64(len(in.Data)) > e.maxBytes {
		return nil, xerr.ErrPayloadTooLarge
	}
	if len(in.Data) == 0 {
		return nil, xerr.New(xerr.ParseFailed, "文件内容为空")
	}

	switch kind {
	case kindText:
		return &Result{Text: string(in.Data), Kind: kindText}, nil

	case kindImage:
		if e.oracle == nil {
			return nil, xerr.New(xerr.ParseFailed, "解析模型未配置，无法处理图片文件")
		}
		octx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
		defer cancel()
		dataURL := fmt.Sprintf("data:%s;base64,%s", normalizeMime(in.MimeType), base64.StdEncoding.EncodeToString(in.Data))
		text, err := e.oracle.GenerateWithImage(octx, fmt.Sprintf(imagePrompt, in.FileName), dataURL)
		if err != nil {
			return nil, xerr.New(xerr.ParseFailed, "图片内容解析失败: "+err.Error())
		}
		return &Result{Text: text, Kind: kindImage}, nil

	default: // kindDocument
		if e.oracle == nil {
			return nil, xerr.New(xerr.ParseFailed, "解析模型未配置，无法处理文档文件")
		}
		octx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
		defer cancel()
		dataURL := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(in.Data)
		text, err := e.oracle.GenerateWithFile(octx, fmt.Sprintf(documentPrompt, in.FileName), in.FileName, dataURL)
		if err != nil {
			return nil, xerr.New(xerr.ParseFailed, "文档内容解析失败: "+err.Error())
		}
		return &Result{Text: text, Kind: kindDocument}, nil
	}
}

func (e *Extractor) extractFeishu(ctx context.Context, in Input, promptTemplate string) (*Result, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, xerr.New(xerr.BadRequest, "文档链接不能为空")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, xerr.New(xerr.RemoteFetchFailed, "无效的文档链接: "+url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, xerr.New(xerr.RemoteFetchFailed, "远程文档拉取失败: "+err.Error())
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, xerr.New(xerr.RemoteFetchFailed, "远程文档拉取失败: "+err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, xerr.New(xerr.RemoteFetchFailed, fmt.Sprintf("远程文档返回状态码 %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return nil, xerr.New(xerr.RemoteFetchFailed, "远程文档读取失败: "+err.Error())
	}
	raw := string(body)

	// 没有配置解析模型时直接使用原始内容，保证核心链路可用
	if e.oracle == nil {
		return &Result{Text: raw, Kind: string(in.SourceType)}, nil
	}

	octx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
	defer cancel()
	text, err := e.oracle.Generate(octx, fmt.Sprintf(promptTemplate, url, truncateRunes(raw, 30000)))
	if err != nil {
		return nil, xerr.New(xerr.ParseFailed, "远程文档解析失败: "+err.Error())
	}
	return &Result{Text: text, Kind: string(in.SourceType)}, nil
}

func normalizeMime(m string) string {
	parsed, _, err := mime.ParseMediaType(m)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(m))
	}
	return parsed
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
