/*
包 image 提供帧图像的解码、缩放与 JPEG 归一化能力。

# 概述

所有进入或离开引擎的图像都经过 Normalizer：输入帧在分发前归一化一次，
Provider 返回的图像在写回结果前再次归一化。归一化输出恒为 JPEG。

# 模式

  - Compact：宽度上限 640 px（不放大，保持宽高比，Catmull-Rom 重采样），质量 70
  - Preserve：保持原始尺寸，质量 90

# 幂等性

每个归一化输出在 SOI 之后携带一个 COM 段，记录模式、质量与宽度上限。
再次以相同模式归一化时，只要标记匹配且满足宽度约束，原字节直接返回。

# 并发

转码是 CPU 密集型操作，Normalizer 通过加权信号量限制同时进行的转码数量，
默认等于 runtime.NumCPU()。

# 其他

  - DecodeDataURI：解析 data:image/(png|jpeg|jpg);base64, 前缀的数据 URI
  - Sniff：仅读取图像头部判断格式与尺寸，Normalize 据此在解码前拒绝超过 MaxPixels 的输入
*/
package image
