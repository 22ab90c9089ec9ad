package patches_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/git-pkgs/repodata-patches"
	_ "github.com/git-pkgs/repodata-patches/all"
)

// syntheticRepodata builds a win-64 repodata document with n records cycling
// through python, vc feature and untouched packages.
func syntheticRepodata(n int) *patches.Repodata {
	pythons := []string{"2.7.15", "3.4.5", "3.6.9", "3.7.3"}
	rd := &patches.Repodata{Packages: make(map[string]patches.Record, n)}
	for i := 0; i < n; i++ {
		var rec patches.Record
		switch i % 3 {
		case 0:
			v := pythons[i%len(pythons)]
			rec = patches.Record{
				"name":           "python",
				"version":        v,
				"build":          fmt.Sprintf("h%d_0", i),
				"depends":        []any{"openssl >=1.1.1"},
				"track_features": "vc14",
			}
		case 1:
			rec = patches.Record{
				"name":     fmt.Sprintf("pkg%d", i),
				"version":  "1.0",
				"depends":  []any{"python >=3.6"},
				"features": "vc14 debug",
			}
		default:
			rec = patches.Record{
				"name":    fmt.Sprintf("lib%d", i),
				"version": "2.0",
				"depends": []any{"vc 14.*"},
			}
		}
		rd.Packages[fmt.Sprintf("%s-%d.tar.bz2", rec.Name(), i)] = rec
	}
	return rd
}

func BenchmarkGenerate(b *testing.B) {
	for _, n := range []int{100, 10000} {
		rd := syntheticRepodata(n)
		b.Run(fmt.Sprintf("records=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := patches.Generate(rd, "win-64"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGenerate_NoPatcher(b *testing.B) {
	rd := syntheticRepodata(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = patches.Generate(rd, "linux-64")
	}
}

func BenchmarkEncode(b *testing.B) {
	ins, err := patches.Generate(syntheticRepodata(10000), "win-64")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = patches.Encode(ins)
	}
}

func BenchmarkDecodeRepodata(b *testing.B) {
	data, err := json.Marshal(syntheticRepodata(10000))
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = patches.DecodeRepodata(bytes.NewReader(data))
	}
}
