// Package unix implements the Unix domain socket transport of the keep RPC
// system on top of the base package. It is meant for clients running on the
// same machine as the server; the endpoint is the path of the socket file.
//
// A stale socket file at the endpoint is removed before listening, any other
// file is left alone and makes Listen fail. The default server buffer size is 64 KB.
package unix
