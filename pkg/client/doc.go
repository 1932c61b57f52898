// Package client is a Go client for the docrag HTTP API.
//
//	c, err := client.New("http://localhost:8080", client.WithAPIKey(key))
//	up, err := c.UploadFile(ctx, "paper.pdf")
//	job, err := c.WaitForJob(ctx, up.FileID)
//	resp, err := c.Chat(ctx, client.ChatRequest{Message: "What is the main result?"})
package client
