package banner

import "fmt"

const Version = "1.0.0"

func Print() {
	banner := `
    _   __     __  ____        __
   / | / /__  / /_/ __ \__  __/ /_______
  /  |/ / _ \/ __/ /_/ / / / / / ___/ _ \
 / /|  /  __/ /_/ ____/ /_/ / (__  )  __/
/_/ |_/\___/\__/_/    \__,_/_/____/\___/
                   v%s - ISP Alerting Core
    `
	fmt.Printf(banner, Version)
	fmt.Println("\n------------------------------------------------")
}
