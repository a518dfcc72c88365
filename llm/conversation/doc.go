/*
包 conversation 负责把提示词与历史组装成发送给 Provider 的对话。

# 提示词形态

调用方可能提交两种形态：

  - FlatPrompt：旧版单条提示词，归一化为一条 user 轮次，系统提示词为空
  - StructuredPrompt：系统提示词 + 多轮历史，原样使用

Normalize 把两种形态统一为 (systemPrompt, history)。

# 组装

Build 按顺序复制历史轮次；提供帧图像时在末尾追加一条只含图像的 user 轮次。
系统提示词不进入对话，由 llm.Request.SystemPrompt 旁路传递。
*/
package conversation
