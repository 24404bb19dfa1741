// Package handle 提供 HTTP 请求处理器的实现.
package handle
