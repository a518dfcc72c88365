/*
Package client 是 FrameLens HTTP API 的 Go 调用方。

每个方法在一次尝试内只发起一次 HTTP 请求，解析 {success, data, error}
信封；success 为 false 或传输失败都算作本次尝试失败，由 retry 策略决定
是否再试。默认策略为 retry.Once：失败后立即重试一次，第二次的错误原样返回。

	c, err := client.New(client.Config{BaseURL: "http://localhost:8080"}, logger)
	results, err := c.AnalyzeFrame(ctx, dataURI, specs)
*/
package client
