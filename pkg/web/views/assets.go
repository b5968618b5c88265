package views

const stylesheet = `
body{margin:0;font-family:system-ui,sans-serif;background:#f4f1ea;overflow:hidden}
header{position:fixed;top:1rem;left:50%;transform:translateX(-50%);z-index:10}
#query{width:20rem;padding:.5rem 1rem;border-radius:2rem;border:1px solid #ccc}
#collage{position:relative;width:100vw;height:100vh}
.collage{position:absolute;inset:0}
.tile{position:absolute;margin:0;cursor:pointer;transition:opacity .3s,transform .3s;box-shadow:0 4px 12px rgba(0,0,0,.2);background:#fff}
.tile img{width:100%;height:100%;object-fit:cover;display:block}
.tile.center{z-index:5;cursor:default}
.tile figcaption{position:absolute;bottom:0;left:0;right:0;padding:.25rem;font-size:.7rem;background:rgba(255,255,255,.8);opacity:0;transition:opacity .2s}
.tile:hover figcaption{opacity:1}
.tile .avatar{width:16px;height:16px;border-radius:50%;vertical-align:middle;margin-right:.25rem}
.transitioning .tile:not(.center){opacity:0}
.status{position:absolute;top:45%;width:100%;text-align:center;color:#555}
footer{position:fixed;bottom:.5rem;right:1rem;font-size:.75rem;color:#555}
`

const script = `
(function(){
  const body=document.body, id=body.dataset.session;
  const debounce=+body.dataset.debounce, exitDelay=+body.dataset.exitDelay;
  const main=document.getElementById('collage'), input=document.getElementById('query');
  const base='/sessions/'+id;
  async function post(path, payload){
    await fetch(base+path,{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify(payload||{})});
    const r=await fetch(base+'/fragment');
    main.innerHTML=await r.text();
  }
  main.addEventListener('click',async e=>{
    const fig=e.target.closest('.tile');
    if(!fig||fig.classList.contains('center')||e.target.closest('a'))return;
    if(main.querySelector('.transitioning'))return;
    await post('/select',{photo_id:fig.dataset.id});
    setTimeout(()=>post('/exit'),exitDelay);
  });
  let timer;
  input.addEventListener('input',()=>{
    clearTimeout(timer);
    timer=setTimeout(()=>post('/query',{query:input.value}),debounce);
  });
  let rt;
  function resize(){post('/viewport',{width:window.innerWidth,height:window.innerHeight});}
  window.addEventListener('resize',()=>{clearTimeout(rt);rt=setTimeout(resize,150);});
  resize();
})();
`
