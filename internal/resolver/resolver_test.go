package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flownative/go-blobsync/synctypes"
)

const testSHA1 = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1"

func TestRelativePublicationPath(t *testing.T) {
	t.Run("hash addressed", func(t *testing.T) {
		resource := synctypes.Resource{SHA1: testSHA1, Filename: "logo.svg"}
		assert.Equal(t, testSHA1+"/logo.svg", RelativePublicationPath(resource))
	})

	t.Run("explicit relative path", func(t *testing.T) {
		resource := synctypes.Resource{
			SHA1:                    testSHA1,
			Filename:                "favicon.ico",
			RelativePublicationPath: "_static/icons/",
		}
		assert.Equal(t, "_static/icons/favicon.ico", RelativePublicationPath(resource))
	})

	t.Run("stable across invocations", func(t *testing.T) {
		resource := synctypes.Resource{SHA1: testSHA1, Filename: "logo.svg"}
		first := RelativePublicationPath(resource)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, RelativePublicationPath(resource))
		}
	})
}

func TestObjectKey(t *testing.T) {
	resource := synctypes.Resource{SHA1: testSHA1, Filename: "logo.svg"}
	assert.Equal(t, "sites/main/"+testSHA1+"/logo.svg", ObjectKey("sites/main/", resource))
	assert.Equal(t, testSHA1+"/logo.svg", ObjectKey("", resource))
}

func TestPersistentResourceURI(t *testing.T) {
	resource := synctypes.Resource{SHA1: testSHA1, Filename: "logo.svg"}

	t.Run("explicit pattern", func(t *testing.T) {
		cfg := Config{
			Pattern: "{baseUri}{sha1}/{filename}",
			BaseURI: "https://assets.example.com/",
		}
		uri := PersistentResourceURI(cfg, resource)
		assert.Equal(t, "https://assets.example.com/"+testSHA1+"/logo.svg", uri)
	})

	t.Run("no pattern no base URI uses native endpoint", func(t *testing.T) {
		cfg := Config{
			ContainerName:  "assets",
			KeyPrefix:      "sites/main/",
			NativeEndpoint: "https://s3.eu-central-1.amazonaws.com/",
		}
		uri := PersistentResourceURI(cfg, resource)
		assert.Equal(t,
			"https://s3.eu-central-1.amazonaws.com/assets/sites/main/"+testSHA1+"/logo.svg",
			uri)
	})

	t.Run("base URI without pattern drops container", func(t *testing.T) {
		cfg := Config{
			ContainerName:  "assets",
			KeyPrefix:      "sites/main/",
			BaseURI:        "https://cdn.example.com/",
			NativeEndpoint: "https://s3.eu-central-1.amazonaws.com/",
		}
		uri := PersistentResourceURI(cfg, resource)
		assert.Equal(t, "https://cdn.example.com/sites/main/"+testSHA1+"/logo.svg", uri)
	})

	t.Run("file extension placeholder", func(t *testing.T) {
		cfg := Config{
			Pattern: "{baseUri}{sha1}.{fileExtension}",
			BaseURI: "https://assets.example.com/",
		}
		uri := PersistentResourceURI(cfg, resource)
		assert.Equal(t, "https://assets.example.com/"+testSHA1+".svg", uri)
	})

	t.Run("filename is encoded per segment", func(t *testing.T) {
		cfg := Config{
			Pattern: "{baseUri}{sha1}/{filename}",
			BaseURI: "https://assets.example.com/",
		}
		spaced := synctypes.Resource{SHA1: testSHA1, Filename: "my logo#1.svg"}
		uri := PersistentResourceURI(cfg, spaced)
		assert.Equal(t, "https://assets.example.com/"+testSHA1+"/my%20logo%231.svg", uri)
	})
}

func TestStaticResourceURI(t *testing.T) {
	cfg := Config{
		ContainerName:  "assets",
		KeyPrefix:      "sites/main/",
		BaseURI:        "https://cdn.example.com/",
		Pattern:        "{baseUri}{sha1}/{filename}",
		NativeEndpoint: "https://s3.eu-central-1.amazonaws.com/",
	}

	// Pattern and base URI must be ignored for static items.
	uri := StaticResourceURI(cfg, "css/site.css")
	assert.Equal(t, "https://s3.eu-central-1.amazonaws.com/assets/sites/main/css/site.css", uri)
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "svg", FileExtension("logo.svg"))
	assert.Equal(t, "gz", FileExtension("archive.tar.gz"))
	assert.Equal(t, "", FileExtension("README"))
}

func TestEncodeSegments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "abc/def", "abc/def"},
		{"space", "a b/c", "a%20b/c"},
		{"reserved", "a?b=c/d&e", "a%3Fb%3Dc/d%26e"},
		{"unreserved kept", "a-b._~c", "a-b._~c"},
		{"slashes preserved as separators", "a/b/c", "a/b/c"},
		{"utf8", "ü", "%C3%BC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeSegments(tt.in))
		})
	}
}

func TestEncodedURIHasNoRawReservedChars(t *testing.T) {
	encoded := EncodeSegments("file with spaces and ?.txt")
	assert.False(t, strings.ContainsAny(encoded, " ?"))
}
