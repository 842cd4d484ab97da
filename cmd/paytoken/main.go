// Command paytoken выпускает токен мерчанта для заголовка Authorization.
//
//	AUTH_SECRET=... paytoken -m 42
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/dayofai/dayof-sub002/internal/middleware"
)

type options struct {
	AuthSecret string `env:"AUTH_SECRET,required"`
}

func main() {
	merchantID := flag.Int64("m", 0, "merchant id")
	flag.Parse()

	var opts options
	if err := env.Parse(&opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *merchantID <= 0 {
		fmt.Fprintln(os.Stderr, "merchant id must be positive")
		os.Exit(2)
	}

	fmt.Println(middleware.NewAuthMiddleware(opts.AuthSecret).IssueToken(*merchantID))
}
