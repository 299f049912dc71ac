package guard

import "testing"

func TestRouteFor(t *testing.T) {
	cases := []struct {
		name       string
		loggedIn   bool
		path       string
		want       Outcome
		wantTarget string
	}{
		{"login while logged out", false, LoginPath, Allow, ""},
		{"registration while logged out", false, RegistrationPath, Allow, ""},
		{"login while logged in", true, LoginPath, Redirect, ChatsPath},
		{"registration while logged in", true, RegistrationPath, Redirect, ChatsPath},

		{"root while logged in", true, "/", Allow, ""},
		{"chats while logged in", true, ChatsPath, Allow, ""},
		{"single chat while logged in", true, "/chats/abc-123", Allow, ""},
		{"profile while logged in", true, ProfilePath, Allow, ""},

		{"root while logged out", false, "/", Redirect, LoginPath},
		{"chats while logged out", false, ChatsPath, Redirect, LoginPath},
		{"single chat while logged out", false, "/chats/abc-123", Redirect, LoginPath},
		{"profile while logged out", false, ProfilePath, Redirect, LoginPath},

		{"unknown path", true, "/nope", NotFound, ""},
		{"unknown path logged out", false, "/nope", NotFound, ""},
		{"nested chat path", true, "/chats/a/b", NotFound, ""},
		{"chats trailing slash only", true, "/chats/", NotFound, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := RouteFor(c.loggedIn, c.path)
			if d.Outcome != c.want {
				t.Fatalf("outcome = %v, want %v", d.Outcome, c.want)
			}
			if d.Target != c.wantTarget {
				t.Fatalf("target = %q, want %q", d.Target, c.wantTarget)
			}
		})
	}
}

func TestRouteFor_IsPure(t *testing.T) {
	// Same inputs, same decision: the guard holds no state.
	for range 3 {
		d := RouteFor(false, ChatsPath)
		if d.Outcome != Redirect || d.Target != LoginPath {
			t.Fatalf("unexpected decision %+v", d)
		}
	}
}
