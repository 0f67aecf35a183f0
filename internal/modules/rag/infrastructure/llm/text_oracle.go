package llm

import (
	"context"
	"fmt"

	"CareerRAG/internal/modules/rag/domain/repository"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// chatModelOracle 把 eino ChatModel 适配为 domain 层的 TextOracle
type chatModelOracle struct {
	cm model.BaseChatModel
}

// NewTextOracle 创建 ChatModel 适配器；cm 为 nil 时返回 nil，调用方按未配置处理
func NewTextOracle(cm model.BaseChatModel) repository.TextOracle {
	if cm == nil {
		return nil
	}
	return &chatModelOracle{cm: cm}
}

func (o *chatModelOracle) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Content, nil
}

func (o *chatModelOracle) GenerateWithImage(ctx context.Context, prompt string, imageDataURL string) (string, error) {
	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: prompt},
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: imageDataURL}},
		},
	}
	resp, err := o.cm.Generate(ctx, []*schema.Message{msg})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Content, nil
}

func (o *chatModelOracle) GenerateWithFile(ctx context.Context, prompt string, fileName string, fileDataURL string) (string, error) {
	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: prompt},
			{Type: schema.ChatMessagePartTypeFileURL, FileURL: &schema.ChatMessageFileURL{URL: fileDataURL, Name: fileName}},
		},
	}
	resp, err := o.cm.Generate(ctx, []*schema.Message{msg})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Content, nil
}
