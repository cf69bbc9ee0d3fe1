package webmap

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{ .Title }}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
{{- if .HasIcons }}
<link rel="stylesheet" href="https://netdna.bootstrapcdn.com/bootstrap/3.0.0/css/bootstrap-glyphicons.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css">
<script src="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.js"></script>
{{- end }}
{{- if .HasDraw }}
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/leaflet.draw/1.0.4/leaflet.draw.css">
<script src="https://cdnjs.cloudflare.com/ajax/libs/leaflet.draw/1.0.4/leaflet.draw.js"></script>
{{- end }}
<style>
html, body { width: 100%; height: 100%; margin: 0; padding: 0; }
#map { position: absolute; top: 0; bottom: 0; right: 0; left: 0; }
#export {
  position: absolute; top: 5px; right: 10px; z-index: 999;
  background: white; color: black; padding: 6px; border-radius: 4px;
  font-family: sans-serif; font-size: 12px; cursor: pointer; display: none;
}
</style>
</head>
<body>
<div id="map"></div>
{{- if .HasDraw }}
<a id="export">Export</a>
{{- end }}
<script type="application/json" id="hazmap-doc">{{ .Doc }}</script>
<script>
(function () {
  var doc = JSON.parse(document.getElementById('hazmap-doc').textContent);
  var map = L.map('map', { center: doc.center, zoom: doc.zoom });

  if (doc.controlScale) {
    L.control.scale().addTo(map);
  }

  var tileOptions = { attribution: doc.tiles.attribution, maxZoom: doc.tiles.maxZoom };
  if (doc.tiles.subdomains) {
    tileOptions.subdomains = doc.tiles.subdomains;
  }
  L.tileLayer(doc.tiles.url, tileOptions).addTo(map);

  var layers = {};
  var overlays = {};

  doc.circles.forEach(function (c) {
    var layer = L.circleMarker(c.location, c.style);
    if (c.popup) {
      layer.bindPopup(c.popup);
    }
    layers[c.id] = layer.addTo(map);
  });

  doc.markers.forEach(function (m) {
    var options = {};
    if (m.icon) {
      options.icon = L.AwesomeMarkers.icon(m.icon);
    }
    var layer = L.marker(m.location, options);
    if (m.popup) {
      layer.bindPopup(m.popup);
    }
    if (m.tooltip) {
      layer.bindTooltip(m.tooltip);
    }
    layers[m.id] = layer.addTo(map);
  });

  doc.geojson.forEach(function (g) {
    var options = {};
    if (g.style) {
      options.style = function () { return g.style; };
    }
    var layer = L.geoJSON(null, options).addTo(map);
    if (g.data) {
      layer.addData(g.data);
    } else {
      fetch(g.url)
        .then(function (resp) { return resp.json(); })
        .then(function (data) { layer.addData(data); });
    }
    layers[g.id] = layer;
    overlays[g.name || g.id] = layer;
  });

  if (doc.layerControl) {
    L.control.layers({}, overlays).addTo(map);
  }

  if (doc.clickForMarker) {
    map.on('click', function (e) {
      var lat = e.latlng.lat.toFixed(4);
      var lng = e.latlng.lng.toFixed(4);
      var popup = doc.clickForMarker.split('${lat}').join(lat).split('${lng}').join(lng);
      L.marker(e.latlng).addTo(map).bindPopup(popup).openPopup();
    });
  }

  if (doc.draw) {
    var drawn = new L.FeatureGroup().addTo(map);
    map.addControl(new L.Control.Draw({ edit: { featureGroup: drawn } }));
    map.on(L.Draw.Event.CREATED, function (e) {
      drawn.addLayer(e.layer);
    });

    if (doc.draw.export) {
      var button = document.getElementById('export');
      button.style.display = 'block';
      button.onclick = function () {
        var data = encodeURIComponent(JSON.stringify(drawn.toGeoJSON()));
        button.setAttribute('href', 'data:text/json;charset=utf-8,' + data);
        button.setAttribute('download', doc.draw.filename);
      };
    }
  }
})();
</script>
</body>
</html>
`
