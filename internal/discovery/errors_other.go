//go:build !unix

package discovery

func isExhaustion(error) bool { return false }
