// Точка входа Researchers Console — административная консоль справочника
// исследователей. Команды: serve (по умолчанию) — HTTP-сервер консоли,
// export — выгрузка справочника в CSV без браузера, version — версия сборки.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
