package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BaSui01/framelens/llm"
	"github.com/BaSui01/framelens/llm/conversation"
	"github.com/BaSui01/framelens/types"
)

// 兜底文案
const (
	NoProjectPrompt = "No project prompt provided."
	NoDescription   = "No description provided."
	NoUserPrompts   = "No user prompts provided."
	NoSystemPrompts = "No system prompts provided."
)

// Media 是被分析的媒体.
type Media struct {
	UUID        string `json:"uuid" yaml:"uuid"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FrameRecord 是一帧的分析记录.
// Timestamp 为帧在媒体中的秒数.
type FrameRecord struct {
	MediaUUID string            `json:"mediaUuid"`
	Timestamp float64           `json:"timestamp"`
	Sequence  int               `json:"sequence,omitempty"`
	Analysis  types.BatchResult `json:"analysis"`
}

// FrameSpec 组装单帧分析用的 AgentSpec.
//
// 系统提示词由系统提示词和用户提示词的非空内容以空行连接；
// 历史依次为项目提示词、媒体名称与描述、合并后的用户提示词.
func FrameSpec(agent Agent, projectPrompt string, media Media) types.AgentSpec {
	system := joinContents(append(append([]PromptItem{}, agent.SystemPrompts...), agent.UserPrompts...))

	description := media.Description
	if description == "" {
		description = NoDescription
	}

	return types.AgentSpec{
		AgentID:      agent.ID,
		SystemPrompt: system,
		MessageHistory: []types.ConversationTurn{
			types.UserTurn(orDefault(projectPrompt, NoProjectPrompt)),
			types.UserTurn(fmt.Sprintf("Media Name: %s\nMedia Description: %s", media.Name, description)),
			types.UserTurn(orDefault(joinContents(agent.UserPrompts), NoUserPrompts)),
		},
		Model: modelOf(agent),
	}
}

// FrameSpecs 为多个 Agent 组装 AgentSpec，顺序与 agents 一致.
func FrameSpecs(agents []Agent, projectPrompt string, media Media) []types.AgentSpec {
	specs := make([]types.AgentSpec, len(agents))
	for i, a := range agents {
		specs[i] = FrameSpec(a, projectPrompt, media)
	}
	return specs
}

// ReportPrompt 组装业务报告的结构化对话.
//
// 历史依次为项目提示词、合并后的用户提示词，以及每帧每个成功且非空的
// Agent 结果各一条 "Frame Analysis" 轮次. 失败结果被跳过.
func ReportPrompt(agent Agent, projectPrompt string, frames []FrameRecord) conversation.StructuredPrompt {
	history := []types.ConversationTurn{
		types.UserTurn(orDefault(projectPrompt, NoProjectPrompt)),
		types.UserTurn(orDefault(joinContents(agent.UserPrompts), NoUserPrompts)),
	}
	for _, frame := range frames {
		for _, outcome := range frame.Analysis {
			if outcome.Response.Failed() || outcome.Response.Text == "" {
				continue
			}
			history = append(history, types.UserTurn(fmt.Sprintf(
				"Frame Analysis (Media UUID: %s, Timestamp: %s): %s",
				frame.MediaUUID, formatTimestamp(frame.Timestamp), outcome.Response.Text,
			)))
		}
	}

	return conversation.StructuredPrompt{
		SystemPrompt:   orDefault(joinContents(agent.SystemPrompts), NoSystemPrompts),
		MessageHistory: history,
	}
}

// ReportModel 返回生成报告时使用的模型.
func ReportModel(agent Agent) string {
	return modelOf(agent)
}

func joinContents(items []PromptItem) string {
	parts := make([]string, 0, len(items))
	for _, p := range items {
		if p.Content != "" {
			parts = append(parts, p.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func modelOf(agent Agent) string {
	if agent.Model == "" {
		return llm.DefaultModel
	}
	return agent.Model
}

// formatTimestamp 输出最短的十进制表示，整数秒不带小数点.
func formatTimestamp(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
