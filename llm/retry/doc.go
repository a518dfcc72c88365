/*
包 retry 提供调用方重试策略。

# 策略

  - Once：默认策略：失败后立即重试一次，不做错误分类，最多调用两次，
              第二次的错误原样返回
  - Backoff：指数退避 + 随机抖动，只重试 types.IsRetryable 为 true 的错误

通过 ParseMode 从配置字符串（once / backoff）选择策略。

# 使用示例

	text, err := retry.Do(ctx, retry.Once(), func(ctx context.Context) (string, error) {
	    return client.call(ctx)
	})
*/
package retry
