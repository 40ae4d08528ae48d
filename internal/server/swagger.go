package server

//go:generate swag init -g internal/server/server.go -o internal/server/docs

// @title rawdata API
// @version 1.0
// @description Scan relay, live scan jobs, local scan history and summaries.
// @contact.name rawdata Maintainers
// @contact.url https://github.com/raysh454/rawdata
// @BasePath /
