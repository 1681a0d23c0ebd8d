// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestForName(t *testing.T) {
	if got := ForName("dark"); got.Name != "dark" {
		t.Errorf("ForName(dark).Name = %q", got.Name)
	}
	if got := ForName("light"); got.Name != "light" {
		t.Errorf("ForName(light).Name = %q", got.Name)
	}
	// "auto" resolves to one of the two without panicking.
	got := ForName("auto")
	if got.Name != "dark" && got.Name != "light" {
		t.Errorf("ForName(auto).Name = %q", got.Name)
	}
}
