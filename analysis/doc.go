/*
包 analysis 提供 Agent 目录加载与分析提示词组装。

# 核心能力

  - LoadCatalog：按类别（business、web、data、film）加载 Agent 定义文件，
                   支持 .yaml / .yml / .json；缺失或损坏的类别记为空列表并告警
  - FrameSpec：将目录中的 Agent 组装为单帧分析用的 types.AgentSpec
  - ReportPrompt：汇总多帧分析结果，组装业务报告所需的结构化对话

内置目录通过 DefaultAgents 嵌入二进制，也可用 os.DirFS 指向自定义目录。
*/
package analysis
