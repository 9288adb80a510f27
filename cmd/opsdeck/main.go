package main

import (
	"fmt"
	"os"

	"github.com/Yat-Muk/opsdeck/internal/cli"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

// 退出碼：1 一般失敗，2 參數錯誤，3 後端不可達
func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeValidation:
		return 2
	case errors.CodeTransport:
		return 3
	default:
		return 1
	}
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "錯誤: %s\n", errors.Reason(err))
		os.Exit(exitCode(err))
	}
}
