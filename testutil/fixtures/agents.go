// =============================================================================
// 📦 测试数据工厂 - Agent 测试数据
// =============================================================================
// 提供预定义的 AgentSpec，用于分发测试
// =============================================================================
package fixtures

import (
	"fmt"

	"github.com/BaSui01/framelens/types"
)

// =============================================================================
// 🤖 AgentSpec 工厂
// =============================================================================

// AgentSpec 返回带一条用户轮次的 AgentSpec
func AgentSpec(id, systemPrompt, userPrompt string) types.AgentSpec {
	return types.AgentSpec{
		AgentID:        id,
		SystemPrompt:   systemPrompt,
		MessageHistory: []types.ConversationTurn{types.UserTurn(userPrompt)},
	}
}

// AgentSpecs 返回 n 个 ID 为 agent-0..agent-(n-1) 的 AgentSpec
func AgentSpecs(n int) []types.AgentSpec {
	specs := make([]types.AgentSpec, n)
	for i := range specs {
		specs[i] = AgentSpec(
			fmt.Sprintf("agent-%d", i),
			fmt.Sprintf("You are analyst #%d.", i),
			fmt.Sprintf("Describe the frame from angle %d.", i),
		)
	}
	return specs
}

// BusinessAndFilmSpecs 返回商业分析与影视分析两个 Agent
func BusinessAndFilmSpecs() []types.AgentSpec {
	return []types.AgentSpec{
		AgentSpec("A", "You are a business analyst.", "What products are visible?"),
		AgentSpec("B", "You are a film critic.", "Describe the shot composition."),
	}
}
