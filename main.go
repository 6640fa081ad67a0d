/*
main.go

Copyright © 2025 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of sqlprobe.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/sqlprobe/cmd"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/sqlprobe/pkg/telemetry"
)

func main() {
	logger.Initialize()

	if err := telemetry.Init(shared.AppID); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Telemetry disabled: %v\n", err)
	}

	cmd.Execute()
}
