// MockProvider 的生成模型测试模拟实现。
//
// 支持固定响应、按 Agent 编排的响应/错误/延迟/panic，以及调用记录。
// Agent 通过 types.AgentID(ctx) 识别，由分发器在调用前写入上下文。
package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BaSui01/framelens/llm"
	"github.com/BaSui01/framelens/types"
)

// --- MockProvider 结构 ---

// AgentScript 描述某个 Agent 的模拟行为
type AgentScript struct {
	Response *llm.Response
	Err      error
	Delay    time.Duration
	Panic    any
}

// MockProvider 是 llm.Provider 的模拟实现，并发安全
type MockProvider struct {
	mu sync.Mutex

	// 响应配置
	response *llm.Response
	err      error
	delay    time.Duration
	scripts  map[string]AgentScript
	fn       func(ctx context.Context, req *llm.Request) (*llm.Response, error)

	// 调用记录
	calls         []MockProviderCall
	inFlight      int
	maxConcurrent int
}

// MockProviderCall 记录单次调用
type MockProviderCall struct {
	AgentID  string
	Request  *llm.Request
	Response *llm.Response
	Error    error
}

// --- 构造函数和 Builder 方法 ---

// NewMockProvider 创建新的 MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		response: &llm.Response{Text: "Mock response"},
		scripts:  make(map[string]AgentScript),
	}
}

// WithResponse 设置默认文本响应
func (m *MockProvider) WithResponse(text string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = &llm.Response{Text: text}
	return m
}

// WithLLMResponse 设置默认完整响应
func (m *MockProvider) WithLLMResponse(resp *llm.Response) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = resp
	return m
}

// WithError 设置默认错误
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithDelay 设置默认延迟
func (m *MockProvider) WithDelay(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithFunc 设置自定义调用函数，优先级低于 Agent 脚本
func (m *MockProvider) WithFunc(fn func(ctx context.Context, req *llm.Request) (*llm.Response, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// WithAgent 设置某个 Agent 的脚本
func (m *MockProvider) WithAgent(agentID string, script AgentScript) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[agentID] = script
	return m
}

// WithAgentResponse 设置某个 Agent 的文本响应
func (m *MockProvider) WithAgentResponse(agentID, text string) *MockProvider {
	return m.WithAgent(agentID, AgentScript{Response: &llm.Response{Text: text}})
}

// WithAgentError 设置某个 Agent 的错误
func (m *MockProvider) WithAgentError(agentID string, err error) *MockProvider {
	return m.WithAgent(agentID, AgentScript{Err: err})
}

// --- llm.Provider 实现 ---

// Name 返回 "mock"
func (m *MockProvider) Name() string {
	return "mock"
}

// Invoke 按脚本返回响应
func (m *MockProvider) Invoke(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	agentID, _ := types.AgentID(ctx)

	m.mu.Lock()
	script, scripted := m.scripts[agentID]
	fn, defResp, defErr, defDelay := m.fn, m.response, m.err, m.delay
	m.inFlight++
	if m.inFlight > m.maxConcurrent {
		m.maxConcurrent = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	delay := defDelay
	if scripted {
		delay = script.Delay
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.record(agentID, req, nil, ctx.Err())
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var (
		resp *llm.Response
		err  error
	)
	switch {
	case scripted && script.Panic != nil:
		m.record(agentID, req, nil, errors.New("panic"))
		panic(script.Panic)
	case scripted:
		resp, err = script.Response, script.Err
		if resp == nil && err == nil {
			resp = &llm.Response{}
		}
	case fn != nil:
		resp, err = fn(ctx, req)
	default:
		resp, err = defResp, defErr
	}
	if err != nil {
		resp = nil
	}

	m.record(agentID, req, resp, err)
	return resp, err
}

func (m *MockProvider) record(agentID string, req *llm.Request, resp *llm.Response, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockProviderCall{AgentID: agentID, Request: req, Response: resp, Error: err})
}

// --- 调用记录查询 ---

// GetCalls 返回所有调用记录
func (m *MockProvider) GetCalls() []MockProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockProviderCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// GetCallCount 返回调用次数
func (m *MockProvider) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// GetLastCall 返回最后一次调用
func (m *MockProvider) GetLastCall() *MockProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	c := m.calls[len(m.calls)-1]
	return &c
}

// CallFor 返回某个 Agent 的第一条调用记录
func (m *MockProvider) CallFor(agentID string) (MockProviderCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.AgentID == agentID {
			return c, true
		}
	}
	return MockProviderCall{}, false
}

// MaxConcurrent 返回观测到的最大并发调用数
func (m *MockProvider) MaxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxConcurrent
}

// --- 便捷构造 ---

// NewSuccessProvider 返回固定文本响应的 Provider
func NewSuccessProvider(text string) *MockProvider {
	return NewMockProvider().WithResponse(text)
}

// NewErrorProvider 返回固定错误的 Provider
func NewErrorProvider(err error) *MockProvider {
	return NewMockProvider().WithError(err)
}
