package modules

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"

	"github.com/coderosh/myriad/core"
)

func TestJSONParseKeepsOrder(t *testing.T) {
	v, err := DecodeJSON(`{"z": 1, "a": [true, null, "s", 2.5], "m": {"k": -1}}`)
	if err != nil {
		t.Fatal(err)
	}
	obj := v.(*core.ObjectValue)
	if got := strings.Join(obj.Keys(), ","); got != "z,a,m" {
		t.Fatalf("key order %s", got)
	}
	if got := obj.String(); got != "{ z: 1, a: [ true, null, 's', 2.5 ], m: { k: -1 } }" {
		t.Fatalf("got %s", got)
	}

	for _, bad := range []string{"{", `{"a": 1} 2`, "nope"} {
		if _, err := DecodeJSON(bad); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestJSONStringify(t *testing.T) {
	wantStr(t, run(t, `json.stringify({ b: 1, a: [1, "x<y", null], f: print });`), `{"b":1,"a":[1,"x<y",null]}`)
	wantStr(t, run(t, `json.stringify([print, 1]);`), `[null,1]`)
	wantStr(t, run(t, `json.stringify({ a: [1], e: {} }, 2);`), "{\n  \"a\": [\n    1\n  ],\n  \"e\": {}\n}")
	if v := run(t, "json.stringify(print);"); v != core.Null {
		t.Fatalf("got %v", v)
	}
}

func TestJSONStringifyCircular(t *testing.T) {
	src := `
		let a = {};
		a.self = a;
		let r;
		try { json.stringify(a); } catch (e) { r = e; }
		r;`
	wantStr(t, run(t, src), "json.stringify: circular structure")

	wantStr(t, run(t, "let s = [1]; json.stringify([s, { s }]);"), `[[1],{"s":[1]}]`)

	arr := core.NewArray(core.NumberValue(1))
	arr.Elements = append(arr.Elements, arr)
	if _, _, err := EncodeJSON(arr, ""); err == nil {
		t.Fatal("expected an error for a circular array")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	src := `
		let doc = json.parse('{"name": "myriad", "tags": ["a", "b"]}');
		doc.tags.push("c");
		json.stringify(doc);`
	wantStr(t, run(t, src), `{"name":"myriad","tags":["a","b","c"]}`)

	wantStr(t, run(t, `let r; try { json.parse("{"); } catch (e) { r = "bad"; } r;`), "bad")
}

func TestFS(t *testing.T) {
	h := newHarness(t, "myriad")
	h.run(t, `
		fs.mkdir("out/nested");
		fs.write("out/a.txt", "hello");
		fs.write("out/nested/b.txt", 42);`)

	data, err := util.ReadFile(h.work, "out/nested/b.txt")
	if err != nil || string(data) != "42" {
		t.Fatalf("b.txt = %q, %v", data, err)
	}

	wantStr(t, h.run(t, `fs.read("out/a.txt");`), "hello")
	wantStr(t, h.run(t, `fs.readdir("out").join(",");`), "a.txt,nested")
	wantStr(t, h.run(t, `fs.readdir("out", true).join(",");`), "a.txt,nested,nested/b.txt")

	wantBool(t, h.run(t, `let s = fs.stat("out/a.txt"); s.is_file() && !s.is_directory() && s.size == 5;`), true)
	wantBool(t, h.run(t, `fs.stat("out").is_directory();`), true)

	h.run(t, `fs.rmrf("out"); fs.rmrf("never-existed");`)
	if _, err := h.work.Stat("out"); err == nil {
		t.Fatal("rmrf left the directory behind")
	}

	wantStr(t, h.run(t, `let r = "none"; try { fs.read("missing.txt"); } catch (e) { r = "caught"; } r;`), "caught")
}

func TestDateTime(t *testing.T) {
	fixed := time.Date(2024, time.March, 9, 14, 30, 0, 0, time.UTC)
	c := newDateTime(func() time.Time { return fixed })
	env := core.NewEnvironment(nil)
	env.LoadModule("dt", c.namespace())
	in := core.New(core.Options{ThrowOnError: true})

	program, err := core.Parse(`
		let d = dt.date();
		[dt.now(), d.year(), d.month(), d.date(), d.day(), d.format("2 January 2006"), d.format("Monday", "fr")];`,
		in.Dialect())
	if err != nil {
		t.Fatal(err)
	}
	v, err := in.Eval(program, env)
	if err != nil {
		t.Fatal(err)
	}

	got := v.(*core.ArrayValue).Elements
	wantNum(t, got[0], float64(fixed.UnixMilli()))
	wantNum(t, got[1], 2024)
	wantNum(t, got[2], 2)
	wantNum(t, got[3], 9)
	wantNum(t, got[4], 6)
	wantStr(t, got[5], "9 March 2024")
	wantStr(t, got[6], "samedi")
}

func TestDateFromTimestamp(t *testing.T) {
	ms := time.Date(1999, time.December, 31, 0, 0, 0, 0, time.Local).UnixMilli()
	h := newHarness(t, "myriad")
	wantNum(t, h.run(t, "dt.date("+core.NumberValue(ms).String()+").year();"), 1999)
}

func TestHTTPHandler(t *testing.T) {
	h := newHarness(t, "myriad")
	_, env, err := h.in.RunWithEnv(`
		let hits = 0;
		func handle(req, res) {
			hits += 1;
			if (req.url == "/missing") {
				res.status(404);
				res.send("nope");
				return;
			}
			res.set_header("X-Method", req.method);
			res.send(format("{} {} {}", req.url, req.body, hits));
		}`, nil)
	if err != nil {
		t.Fatal(err)
	}
	fn, _ := env.Lookup("handle")
	srv := httptest.NewServer((&_http{in: h.in}).Handler(fn, env))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/echo?x=1", "text/plain", strings.NewReader("payload"))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "/echo?x=1 payload 1" {
		t.Fatalf("got %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Method") != "POST" {
		t.Fatalf("headers %v", resp.Header)
	}

	resp, err = http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound || string(body) != "nope" {
		t.Fatalf("got %d %q", resp.StatusCode, body)
	}
}

func TestHTTPHandlerError(t *testing.T) {
	h := newHarness(t, "myriad")
	_, env, err := h.in.RunWithEnv(`func handle(req, res) { throw "broken"; }`, nil)
	if err != nil {
		t.Fatal(err)
	}
	fn, _ := env.Lookup("handle")
	rec := httptest.NewRecorder()
	(&_http{in: h.in}).Handler(fn, env).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "broken") {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}
