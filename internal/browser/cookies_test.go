package browser

import (
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/require"
)

func TestToHTTPCookies(t *testing.T) {
	in := []*proto.NetworkCookie{
		{Name: "sessionid", Value: "abc", Domain: ".freitag.de", Path: "/", Secure: true, HTTPOnly: true, Session: true},
		{Name: "remember", Value: "1", Domain: "digital.freitag.de", Path: "/", Expires: proto.TimeSinceEpoch(1767225600)},
		nil,
		{Name: "", Value: "ignored"},
	}

	out := toHTTPCookies(in)
	require.Len(t, out, 2)

	require.Equal(t, "sessionid", out[0].Name)
	require.Equal(t, "abc", out[0].Value)
	require.Equal(t, ".freitag.de", out[0].Domain)
	require.True(t, out[0].Secure)
	require.True(t, out[0].HttpOnly)
	require.True(t, out[0].Expires.IsZero())

	require.Equal(t, time.Unix(1767225600, 0), out[1].Expires)
}
