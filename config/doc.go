// Package config 提供 FrameLens 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量（FRAMELENS_ 前缀）的顺序加载，
// Gemini 密钥缺省时回退到 GOOGLE_API_KEY。Watcher 轮询配置文件，
// 变更后重新加载并回调，用于运行时调整日志级别等可热更新的字段。
package config
