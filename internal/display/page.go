package display

// indexPage is the minimal congregation view: two large translation lines,
// a smaller source line, and a paused banner. It reconnects on drop.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Live Translation</title>
<style>
  body { background: #000; color: #fff; font-family: sans-serif;
         display: flex; flex-direction: column; justify-content: center;
         min-height: 95vh; margin: 0; padding: 2rem; text-align: center; }
  #primary { font-size: 3rem; margin: 1rem 0; }
  #secondary { font-size: 2.2rem; color: #ccc; margin: 1rem 0; }
  #source { font-size: 1.2rem; color: #888; }
  #interim { font-size: 1.2rem; color: #666; font-style: italic; min-height: 1.5rem; }
  #banner { font-size: 1.5rem; color: #fb0; display: none; }
</style>
</head>
<body>
  <div id="banner">Translation paused</div>
  <div id="primary"></div>
  <div id="secondary"></div>
  <div id="source"></div>
  <div id="interim"></div>
<script>
function connect() {
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.type === "segment") {
      document.getElementById("primary").textContent = msg.primary || "";
      document.getElementById("secondary").textContent = msg.secondary || "";
      document.getElementById("source").textContent = msg.source || "";
      document.getElementById("interim").textContent = "";
    } else if (msg.type === "interim") {
      document.getElementById("interim").textContent = msg.text || "";
    } else if (msg.type === "paused") {
      document.getElementById("banner").style.display = msg.paused ? "block" : "none";
    }
  };
  ws.onclose = function () { setTimeout(connect, 2000); };
}
connect();
</script>
</body>
</html>
`
