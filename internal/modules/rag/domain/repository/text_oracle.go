package repository

import "context"

// TextOracle 文本生成外部服务的窄接口。
//
// 摘要生成与非文本文件（图片/PDF/Word）的内容抽取都走这里；
// 实现方（eino ChatModel 适配器）对上层不可见，便于测试时注入确定性假实现。
type TextOracle interface {
	// Generate 纯文本补全
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateWithImage 携带一张 base64 data URL 图片的多模态补全
	GenerateWithImage(ctx context.Context, prompt string, imageDataURL string) (string, error)

	// GenerateWithFile 携带一个 base64 data URL 文件的多模态补全
	GenerateWithFile(ctx context.Context, prompt string, fileName string, fileDataURL string) (string, error)
}
