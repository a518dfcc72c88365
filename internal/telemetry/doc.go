// Package telemetry 封装 OpenTelemetry SDK 初始化，
// 为 FrameLens 的批次分发 span 与 OTel 指标提供全局 TracerProvider 和 MeterProvider。
// 禁用时保持 noop 实现，不连接任何外部服务。
package telemetry
