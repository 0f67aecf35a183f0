package service

import (
	"context"
	"errors"
	"sync"

	"CareerRAG/internal/modules/rag/domain/document"

	"github.com/cloudwego/eino/components/embedding"
)

// fakeMirror 可切换故障状态的内存数据库镜像
type fakeMirror struct {
	mu      sync.Mutex
	docs    map[string]*document.Document
	deleted map[string]bool
	preload []*document.Document
	failing bool
	// onUpsert 在写入生效前调用，用于模拟与写入交错的并发操作
	onUpsert func(documentId string)
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		docs:    make(map[string]*document.Document),
		deleted: make(map[string]bool),
	}
}

func (m *fakeMirror) setFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

func (m *fakeMirror) UpsertDocument(ctx context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("mysql gone away")
	}
	if m.onUpsert != nil {
		m.onUpsert(doc.Id)
	}
	m.docs[doc.Id] = doc.Clone()
	delete(m.deleted, doc.Id)
	return nil
}

func (m *fakeMirror) DeleteDocument(ctx context.Context, documentId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("mysql gone away")
	}
	m.deleted[documentId] = true
	return nil
}

func (m *fakeMirror) LoadActiveDocuments(ctx context.Context) ([]*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errors.New("mysql gone away")
	}
	out := make([]*document.Document, 0, len(m.preload))
	for _, doc := range m.preload {
		out = append(out, doc.Clone())
	}
	return out, nil
}

func (m *fakeMirror) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("mysql gone away")
	}
	return nil
}

func (m *fakeMirror) has(documentId string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[documentId]
	return ok
}

func (m *fakeMirror) wasDeleted(documentId string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleted[documentId]
}

// flakyEmbedder 包装真实向量化实现，按文本注入失败
type flakyEmbedder struct {
	inner embedding.Embedder
	fail  func(text string) bool
}

func (f *flakyEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if f.fail != nil {
		for _, t := range texts {
			if f.fail(t) {
				return nil, errors.New("embedding service unavailable")
			}
		}
	}
	return f.inner.EmbedStrings(ctx, texts, opts...)
}

// fakeOracle 固定回复/固定失败的文本生成假实现
type fakeOracle struct {
	reply string
	err   error
}

func (o *fakeOracle) Generate(ctx context.Context, prompt string) (string, error) {
	return o.reply, o.err
}

func (o *fakeOracle) GenerateWithImage(ctx context.Context, prompt, imageDataURL string) (string, error) {
	return o.reply, o.err
}

func (o *fakeOracle) GenerateWithFile(ctx context.Context, prompt, fileName, fileDataURL string) (string, error) {
	return o.reply, o.err
}

// recordingNotifier 记录收到的同步通知
type recordingNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (n *recordingNotifier) Notify(documentId string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, documentId)
}

func (n *recordingNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.ids...)
}
